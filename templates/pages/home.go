package pages

import (
	"context"

	"mavenestudio/services"
	"mavenestudio/services/i18n"
	"mavenestudio/templates/components"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
)

// homeProjects is how many projects the home page teaser shows
const homeProjects = 6

func langOf(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

func Home(content *services.SiteContent) templ.Component {
	projects := content.Projects
	if len(projects) > homeProjects {
		projects = projects[:homeProjects]
	}
	return components.View(func(ctx context.Context) g.Node {
		return g.Group{
			hero(ctx),
			aboutSection(ctx),
			servicesSection(ctx),
			processSection(ctx),
			statsSection(ctx, content.Stats),
			portfolioSection(ctx, projects),
			testimonialsSection(ctx, content.Testimonials),
			faqSection(ctx),
			letsWork(ctx),
		}
	})
}

func About(content *services.SiteContent) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return g.Group{
			aboutSection(ctx),
			processSection(ctx),
			statsSection(ctx, content.Stats),
			testimonialsSection(ctx, content.Testimonials),
			letsWork(ctx),
		}
	})
}

func ServicesPage() templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return g.Group{servicesSection(ctx), processSection(ctx), faqSection(ctx), letsWork(ctx)}
	})
}
