package handlers

import (
	"net/http"
	"strings"

	"mavenestudio/models"
	"mavenestudio/services"
	"mavenestudio/templates/pages"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

func siteContent() (*services.SiteContent, error) {
	content, err := services.Content()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	return content, nil
}

func staticPage(page string, body func(*services.SiteContent) templ.Component) echo.HandlerFunc {
	return func(c echo.Context) error {
		content, err := siteContent()
		if err != nil {
			return err
		}
		return renderPage(c, http.StatusOK, newPage(c, GetSEO(c, page)), body(content))
	}
}

// HomeHandler renders the landing page
var HomeHandler = staticPage("home", pages.Home)

var WebsiteAboutHandler = staticPage("about", pages.About)

var WebsiteServicesHandler = staticPage("services", func(*services.SiteContent) templ.Component {
	return pages.ServicesPage()
})

var WebsiteTermsHandler = staticPage("terms", func(*services.SiteContent) templ.Component {
	return pages.Terms()
})

var WebsitePrivacyHandler = staticPage("privacy", func(*services.SiteContent) templ.Component {
	return pages.Privacy()
})

// PortfolioHandler lists projects. ?type= filters by category; htmx
// requests get only the grid.
func PortfolioHandler(c echo.Context) error {
	content, err := siteContent()
	if err != nil {
		return err
	}

	filter := c.QueryParam("type")
	if filter != services.ProjectTypeBranding && filter != services.ProjectTypeWeb {
		filter = ""
	}
	projects := content.ProjectsByType(filter)

	if isHTMX(c) {
		return render(c, http.StatusOK, pages.ProjectGrid(projects))
	}
	return renderPage(c, http.StatusOK, newPage(c, GetSEO(c, "portfolio")), pages.Portfolio(projects, filter))
}

// ProjectHandler shows a branding project's gallery. Unknown projects and
// projects without a gallery redirect to the home page.
func ProjectHandler(c echo.Context) error {
	content, err := siteContent()
	if err != nil {
		return err
	}

	project, ok := content.FindProject(c.Param("id"))
	if !ok || !project.HasDetailPage() {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	seo := GetSEO(c, "portfolio")
	seo.Title = project.Title + " | Maven Estúdio"
	seo.Description = project.Description
	cover := services.AssetURL(project.Cover)
	if strings.HasPrefix(cover, "/") {
		cover = getConfig(c).AppURL + cover
	}
	pageURL := getConfig(c).AppURL + "/portfolio/" + project.ID
	seo.WithCanonical(pageURL).WithOGImage(cover).
		WithStructuredData(models.CreativeWorkSchema(project.Title, project.Description, pageURL, cover, "Maven Estúdio"))
	return renderPage(c, http.StatusOK, newPage(c, seo), pages.Project(project))
}
