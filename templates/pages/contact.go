package pages

import (
	"context"

	"mavenestudio/templates/components"
	"mavenestudio/templates/partials"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Contact is the full-page wizard
func Contact(v partials.WizardView) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return h.Section(h.Class("contact-page"),
			h.A(h.Href("/"), h.Class("logo"),
				h.Img(h.Src("/static/images/logo.png"), h.Alt(tr(ctx, "site.name")))),
			partials.WizardNode(ctx, v),
		)
	})
}
