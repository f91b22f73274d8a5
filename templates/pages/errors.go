package pages

import (
	"context"

	"mavenestudio/templates/components"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

func errorPage(class string, children ...g.Node) g.Node {
	return h.Section(h.Class("error-page"+class), g.Group(children))
}

func NotFound() templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return errorPage("",
			h.P(h.Class("error-code"), g.Text("404")),
			h.H1(g.Text(tr(ctx, "errors.notFound.title"))),
			h.P(g.Text(tr(ctx, "errors.notFound.description"))),
			button("/", "btn-primary", tr(ctx, "errors.notFound.back")),
		)
	})
}

// Recovery is the static screen shown when rendering a page failed. It
// does not depend on site content so it can render after any error.
func Recovery() templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return errorPage(" recovery",
			h.H1(g.Text(tr(ctx, "errors.recovery.title"))),
			h.P(g.Text(tr(ctx, "errors.recovery.description"))),
			button("", "btn-primary", tr(ctx, "errors.recovery.reload")),
		)
	})
}
