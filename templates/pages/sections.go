package pages

import (
	"context"
	"fmt"
	"strconv"

	"mavenestudio/services"
	"mavenestudio/services/leadform"
	"mavenestudio/templates/components"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

func tr(ctx context.Context, key string) string {
	return components.T(ctx, key)
}

// section opens a landing section with its label, title and, optionally,
// description, followed by children.
func section(ctx context.Context, id, prefix string, withDescription bool, children ...g.Node) g.Node {
	return h.Section(h.ID(id), h.Class("section "+prefix),
		h.Span(h.Class("section-label"), g.Text(tr(ctx, prefix+".label"))),
		components.Heading(ctx, "h2", prefix),
		g.If(withDescription, h.P(h.Class("section-description"), g.Text(tr(ctx, prefix+".description")))),
		g.Group(children),
	)
}

func button(href, class, label string) g.Node {
	return h.A(h.Href(href), h.Class("btn "+class), g.Text(label))
}

func hero(ctx context.Context) g.Node {
	return h.Section(h.ID("inicio"), h.Class("hero"),
		h.H1(
			g.Text(tr(ctx, "hero.title")+" "),
			h.Span(h.Class("highlight"), g.Text(tr(ctx, "hero.titleHighlight"))),
		),
		h.P(h.Class("hero-subtitle"), g.Text(tr(ctx, "hero.subtitle"))),
		h.Div(h.Class("hero-actions"),
			button("/contato", "btn-primary", tr(ctx, "hero.cta")),
			button("/portfolio", "btn-outline", tr(ctx, "hero.ctaSecondary")),
		),
	)
}

var aboutPillars = []string{"strategy", "connection", "consistency", "differentiation"}

func aboutSection(ctx context.Context) g.Node {
	return section(ctx, "sobre", "about", true,
		h.Div(h.Class("grid grid-4"),
			g.Map(aboutPillars, func(p string) g.Node {
				return h.Article(h.Class("card"),
					h.H3(g.Text(tr(ctx, "about."+p))),
					h.P(g.Text(tr(ctx, "about."+p+"Desc"))),
				)
			}),
		),
	)
}

func servicesSection(ctx context.Context) g.Node {
	lang := langOf(ctx)
	return section(ctx, "servicos", "services", true,
		h.Div(h.Class("grid grid-3"),
			g.Map(leadform.Services(), func(s leadform.ServiceOption) g.Node {
				return h.Article(h.Class("card service-card"), g.Attr("data-icon", s.Icon),
					h.H3(g.Text(s.LabelFor(lang))),
					h.P(g.Text(s.DescriptionFor(lang))),
				)
			}),
		),
		button("/contato", "btn-primary", tr(ctx, "services.cta")),
	)
}

const processSteps = 6

func processSection(ctx context.Context) g.Node {
	steps := make(g.Group, 0, processSteps)
	for i := 1; i <= processSteps; i++ {
		key := fmt.Sprintf("process.step%d", i)
		steps = append(steps, h.Li(
			h.Span(h.Class("step-number"), g.Textf("%02d", i)),
			h.H3(g.Text(tr(ctx, key))),
			h.P(g.Text(tr(ctx, key+"Desc"))),
		))
	}
	return section(ctx, "processo", "process", false, h.Ol(h.Class("process-steps"), steps))
}

func statsSection(ctx context.Context, stats []services.Stat) g.Node {
	return section(ctx, "resultados", "stats", false,
		h.Dl(h.Class("stats"),
			g.Map(stats, func(s services.Stat) g.Node {
				return h.Div(h.Class("stat"),
					h.Dt(g.Attr("data-counter", strconv.Itoa(s.Value)), g.Text(strconv.Itoa(s.Value)+s.Suffix)),
					h.Dd(g.Text(tr(ctx, s.Key))),
				)
			}),
		),
	)
}

// projectGrid renders portfolio cards. Branding projects open their
// gallery page, web projects link to the live site.
func projectGrid(ctx context.Context, projects []services.Project) g.Node {
	return h.Div(h.Class("grid grid-3 portfolio-grid"),
		g.Map(projects, func(p services.Project) g.Node {
			return h.Article(h.Class("project-card"), g.Attr("data-type", p.Type),
				h.Img(g.Attr("loading", "lazy"), h.Src(services.AssetURL(p.Cover)), h.Alt(p.Title),
					g.If(p.ImagePosition != "", h.Class(p.ImagePosition))),
				h.Span(h.Class("project-category"), g.Text(tr(ctx, "portfolio.categories."+p.Type))),
				h.H3(g.Text(p.Title)),
				h.P(g.Text(p.Description)),
				projectLink(ctx, p),
			)
		}),
	)
}

func projectLink(ctx context.Context, p services.Project) g.Node {
	switch {
	case p.HasDetailPage():
		return h.A(h.Class("project-link"), h.Href("/portfolio/"+p.ID), g.Text(tr(ctx, "portfolio.viewProject")))
	case p.ExternalLink != "":
		return h.A(h.Class("project-link"), h.Target("_blank"), h.Rel("noopener"), h.Href(p.ExternalLink),
			g.Text(tr(ctx, "portfolio.visitSite")))
	}
	return nil
}

func portfolioSection(ctx context.Context, projects []services.Project) g.Node {
	return section(ctx, "portfolio", "portfolio", true,
		projectGrid(ctx, projects),
		button("/portfolio", "btn-outline", tr(ctx, "hero.ctaSecondary")),
	)
}

func testimonialsSection(ctx context.Context, testimonials []services.Testimonial) g.Node {
	return section(ctx, "depoimentos", "testimonials", false,
		h.Div(h.Class("marquee"),
			g.Map(testimonials, func(t services.Testimonial) g.Node {
				return g.El("blockquote", h.Class("testimonial"),
					h.P(g.Text(t.Text)),
					h.Footer(g.El("cite", g.Text(t.Name)), h.Span(g.Text(t.Role))),
				)
			}),
		),
	)
}

const faqEntries = 5

func faqSection(ctx context.Context) g.Node {
	items := make(g.Group, 0, faqEntries)
	for i := 1; i <= faqEntries; i++ {
		items = append(items, h.Details(h.Class("faq-item"),
			h.Summary(g.Text(tr(ctx, fmt.Sprintf("faq.q%d", i)))),
			h.P(g.Text(tr(ctx, fmt.Sprintf("faq.a%d", i)))),
		))
	}
	return section(ctx, "faq", "faq", true, items)
}

func letsWork(ctx context.Context) g.Node {
	email := tr(ctx, "contact.email")
	return h.Section(h.ID("contato"), h.Class("lets-work"),
		h.H2(
			g.Text(tr(ctx, "contact.letsWork")+" "),
			h.Span(h.Class("highlight"), g.Text(tr(ctx, "contact.together"))),
		),
		h.P(h.Class("availability"), g.Text(tr(ctx, "contact.available"))),
		button("/contato", "btn-primary", tr(ctx, "nav.fazerOrcamento")),
		h.A(h.Class("contact-email"), h.Href("mailto:"+email), g.Text(email)),
	)
}
