package pages

import (
	"context"

	"mavenestudio/services"
	"mavenestudio/templates/components"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

var portfolioFilters = []string{"", services.ProjectTypeBranding, services.ProjectTypeWeb}

// Portfolio lists projects, optionally filtered by type. The filter links
// swap only the grid when htmx is present.
func Portfolio(projects []services.Project, active string) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return section(ctx, "portfolio", "portfolio", true,
			h.Nav(h.Class("portfolio-filters"),
				g.Map(portfolioFilters, func(f string) g.Node { return filterLink(ctx, f, f == active) }),
			),
			h.Div(h.ID("portfolio-results"), projectGrid(ctx, projects)),
		)
	})
}

func filterLink(ctx context.Context, filter string, active bool) g.Node {
	href, label := "/portfolio", tr(ctx, "portfolio.all")
	if filter != "" {
		href += "?type=" + filter
		label = tr(ctx, "portfolio.categories."+filter)
	}
	return h.A(h.Href(href),
		g.Attr("hx-get", href),
		g.Attr("hx-target", "#portfolio-results"),
		g.Attr("hx-push-url", "true"),
		g.If(active, h.Class("active")),
		g.Text(label),
	)
}

// ProjectGrid is the htmx response to a filter change
func ProjectGrid(projects []services.Project) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return projectGrid(ctx, projects)
	})
}

// Project shows the numbered gallery of a branding project
func Project(p services.Project) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		images := p.Images()
		gallery := make(g.Group, 0, len(images))
		for i, img := range images {
			gallery = append(gallery, h.Img(h.Src(services.AssetURL(img)), h.Alt(p.Title),
				g.If(i > 1, g.Attr("loading", "lazy"))))
		}
		return g.Group{
			h.Article(h.Class("project-detail"),
				h.A(h.Href("/portfolio"), h.Class("back-link"), g.Text(tr(ctx, "portfolio.backToPortfolio"))),
				h.Span(h.Class("project-category"), g.Text(tr(ctx, "portfolio.categories."+p.Type))),
				h.H1(g.Text(p.Title)),
				h.P(h.Class("project-description"), g.Text(p.Description)),
				h.Div(h.Class("gallery"), gallery),
			),
			letsWork(ctx),
		}
	})
}
