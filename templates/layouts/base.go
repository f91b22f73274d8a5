package layouts

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"mavenestudio/middleware"
	"mavenestudio/models"
	"mavenestudio/services/i18n"
	"mavenestudio/services/leadform"
	"mavenestudio/templates/components"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Page carries what the shell around every page needs
type Page struct {
	SEO              *models.SEO
	Path             string // request path, used by the language selector
	MetaPixelID      string
	TurnstileSiteKey string // loads the Turnstile script when set
	Notices          []leadform.Notice
	Minimal          bool // hides header and footer (contact wizard, errors)
}

type navLink struct {
	key  string
	href string
}

var navLinks = []navLink{
	{"nav.sobre", "/sobre"},
	{"nav.servicos", "/servicos"},
	{"nav.processo", "/#processo"},
	{"nav.portfolio", "/portfolio"},
	{"nav.faq", "/#faq"},
}

const (
	htmxScript      = "https://unpkg.com/htmx.org@2.0.4"
	turnstileScript = "https://challenges.cloudflare.com/turnstile/v0/api.js"

	// htmxConfig lets error responses swap so their toasts reach the page
	htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"[45]..","swap":true,"error":true}]}`
)

// Base wraps body in the html document
func Base(p Page, body templ.Component) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return document(ctx, p, components.Embed(ctx, body))
	})
}

func document(ctx context.Context, p Page, body g.Node) g.Node {
	nonce := middleware.GetNonce(ctx)
	csrfHeader := components.JSON(map[string]string{"X-CSRF-Token": middleware.CSRFFromContext(ctx)})

	return h.Doctype(
		h.HTML(h.Lang(htmlLang(i18n.GetLocale(ctx))),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				seoHead(ctx, p.SEO),
				h.Meta(h.Name("htmx-config"), h.Content(htmxConfig)),
				h.Link(h.Rel("icon"), h.Type("image/png"), h.Href(middleware.AssetPath(ctx, "images/favicon.png"))),
				h.Link(h.Rel("stylesheet"), h.Href(middleware.AssetPath(ctx, "css/style.css"))),
				h.Script(h.Src(htmxScript), g.Attr("defer"), g.Attr("nonce", nonce)),
				h.Script(h.Src(middleware.AssetPath(ctx, "js/app.js")), g.Attr("defer"), g.Attr("nonce", nonce)),
				g.If(p.TurnstileSiteKey != "",
					h.Script(h.Src(turnstileScript), g.Attr("async"), g.Attr("defer"), g.Attr("nonce", nonce))),
				components.MetaPixel(ctx, p.MetaPixelID),
			),
			h.Body(g.Attr("hx-headers", csrfHeader),
				g.Iff(!p.Minimal, func() g.Node { return header(ctx, p.Path) }),
				h.Main(h.ID("main"), body),
				g.Iff(!p.Minimal, func() g.Node { return footer(ctx) }),
				components.ToastRegion(p.Notices, false),
			),
		),
	)
}

func htmlLang(lang string) string {
	if lang == "pt" {
		return "pt-BR"
	}
	return lang
}

func meta(attr, key, value string) g.Node {
	if value == "" {
		return nil
	}
	return h.Meta(g.Attr(attr, key), h.Content(value))
}

func seoHead(ctx context.Context, seo *models.SEO) g.Node {
	if seo == nil {
		return nil
	}
	var links g.Group
	if seo.Canonical != "" {
		links = append(links, h.Link(h.Rel("canonical"), h.Href(seo.Canonical)))
		for _, alt := range seo.AltLocales {
			links = append(links, h.Link(h.Rel("alternate"), g.Attr("hreflang", alt), h.Href(seo.Canonical+"?lang="+alt)))
		}
	}

	return g.Group{
		g.El("title", g.Text(seo.Title)),
		meta("name", "description", seo.Description),
		meta("name", "keywords", seo.Keywords),
		g.If(seo.NoIndex, meta("name", "robots", "noindex, nofollow")),
		links,
		meta("property", "og:title", seo.GetOGTitle()),
		meta("property", "og:description", seo.GetOGDesc()),
		meta("property", "og:type", seo.OGType),
		meta("property", "og:url", seo.Canonical),
		meta("property", "og:image", seo.OGImage),
		meta("property", "og:locale", seo.OGLocale()),
		meta("name", "twitter:card", seo.TwitterCard),
		components.JSONLD(seo.StructuredData, middleware.GetNonce(ctx)),
	}
}

func link(ctx context.Context, l navLink) g.Node {
	return h.A(h.Href(l.href), g.Text(components.T(ctx, l.key)))
}

func header(ctx context.Context, path string) g.Node {
	return h.Header(h.Class("site-header"),
		h.A(h.Href("/"), h.Class("logo"),
			h.Img(h.Src("/static/images/logo.png"), h.Alt(components.T(ctx, "site.name")))),
		h.Nav(h.Class("site-nav"),
			g.Map(navLinks, func(l navLink) g.Node { return link(ctx, l) })),
		languageSelector(ctx, path),
		h.A(h.Href("/contato"), h.Class("btn btn-primary"), g.Text(components.T(ctx, "nav.fazerOrcamento"))),
	)
}

// languageSelector links to /language/:lang, which returns to path
func languageSelector(ctx context.Context, path string) g.Node {
	current := i18n.GetLocale(ctx)
	return h.Div(h.Class("language-selector"), g.Attr("aria-label", components.T(ctx, "nav.language")),
		g.Map(i18n.Languages, func(lang string) g.Node {
			return h.A(
				h.Href("/language/"+lang+"?next="+url.QueryEscape(path)),
				g.Attr("hreflang", lang),
				g.If(lang == current, g.Group{h.Class("active"), g.Attr("aria-current", "true")}),
				g.Text(components.T(ctx, "languages."+lang)),
			)
		}),
	)
}

var socialLinks = []navLink{
	{"Facebook", "https://www.facebook.com/mavenestudio"},
	{"Instagram", "https://www.instagram.com/mavenestudio"},
	{"Behance", "https://www.behance.net/mavenestdio"},
}

var footerColumns = []struct {
	titleKey string
	links    []navLink
}{
	{"footer.navigation", []navLink{
		{"nav.sobre", "/sobre"},
		{"nav.processo", "/#processo"},
		{"nav.resultados", "/#resultados"},
		{"testimonials.label", "/#depoimentos"},
	}},
	{"footer.services", []navLink{
		{"footer.identity", "/contato"},
		{"footer.redesign", "/contato"},
		{"footer.consulting", "/contato"},
		{"footer.naming", "/contato"},
	}},
	{"footer.legal", []navLink{
		{"footer.terms", "/termos"},
		{"footer.privacy", "/privacidade"},
	}},
}

func footer(ctx context.Context) g.Node {
	year := map[string]interface{}{"year": strconv.Itoa(time.Now().Year())}

	columns := make(g.Group, 0, len(footerColumns))
	for _, col := range footerColumns {
		columns = append(columns, h.Div(h.Class("footer-col"),
			h.H4(g.Text(components.T(ctx, col.titleKey))),
			h.Ul(g.Map(col.links, func(l navLink) g.Node { return h.Li(link(ctx, l)) })),
		))
	}

	return h.Footer(h.Class("site-footer"),
		h.Div(h.Class("footer-brand"),
			h.P(g.Text(components.T(ctx, "footer.description"))),
			h.Ul(h.Class("social"),
				g.Map(socialLinks, func(s navLink) g.Node {
					return h.Li(h.A(h.Target("_blank"), h.Rel("noopener"), h.Href(s.href), g.Text(s.key)))
				}),
				h.Li(h.A(h.Href("mailto:contato@mavenestudio.com.br"), g.Text("Email"))),
			),
		),
		columns,
		h.Div(h.Class("footer-bottom"),
			h.P(g.Text(components.T(ctx, "footer.copyright", year))),
			h.P(g.Text(components.T(ctx, "footer.madeBy"))),
		),
	)
}
