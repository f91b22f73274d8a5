package handlers

import (
	"mavenestudio/config"
	"mavenestudio/models"
	"mavenestudio/templates/layouts"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// isHTMX reports whether the request came from htmx and expects a fragment
func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

// render writes component with the given status
func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// newPage fills the layout fields shared by every page
func newPage(c echo.Context, seo *models.SEO) layouts.Page {
	cfg := getConfig(c)
	return layouts.Page{
		SEO:         seo,
		Path:        c.Request().URL.Path,
		MetaPixelID: cfg.MetaPixelID,
	}
}

// renderPage renders body inside the site layout
func renderPage(c echo.Context, status int, page layouts.Page, body templ.Component) error {
	return render(c, status, layouts.Base(page, body))
}
