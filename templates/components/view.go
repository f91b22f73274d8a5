package components

import (
	"context"
	"io"

	"mavenestudio/services/i18n"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// View builds a node tree per request and exposes it as the templ.Component
// handlers render. The build function sees the request context, which
// carries the locale, the CSP nonce and the CSRF token.
func View(build func(ctx context.Context) g.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return build(ctx).Render(w)
	})
}

// Embed places a templ component inside a node tree
func Embed(ctx context.Context, c templ.Component) g.Node {
	if c == nil {
		return nil
	}
	return g.NodeFunc(func(w io.Writer) error {
		return c.Render(ctx, w)
	})
}

// T translates key in the request language
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return i18n.T(ctx, key, args...)
}

// Heading is a section title with its highlighted second half
func Heading(ctx context.Context, tag, prefix string) g.Node {
	return g.El(tag, h.Class("section-title"),
		g.Text(T(ctx, prefix+".title")+" "),
		h.Span(h.Class("highlight"), g.Text(T(ctx, prefix+".titleHighlight"))),
	)
}
