package pages

import (
	"context"
	"fmt"

	"mavenestudio/templates/components"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// LegalUpdated is the revision date shown on the legal pages
const LegalUpdated = "2025-01-15"

const legalSections = 4

func legalPage(prefix string) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		body := make(g.Group, 0, 2*legalSections)
		for i := 1; i <= legalSections; i++ {
			body = append(body,
				h.H2(g.Text(tr(ctx, fmt.Sprintf("%s.s%dTitle", prefix, i)))),
				h.P(g.Text(tr(ctx, fmt.Sprintf("%s.s%dBody", prefix, i)))),
			)
		}
		return h.Article(h.Class("legal"),
			h.H1(g.Text(tr(ctx, prefix+".title"))),
			h.P(h.Class("legal-updated"), g.Text(components.T(ctx, "legal.updated", map[string]interface{}{"date": LegalUpdated}))),
			body,
		)
	})
}

func Terms() templ.Component {
	return legalPage("legal.terms")
}

func Privacy() templ.Component {
	return legalPage("legal.privacy")
}
