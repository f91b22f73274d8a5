package handlers

import (
	"mavenestudio/middleware"
	"mavenestudio/models"
	"mavenestudio/services/i18n"

	"github.com/labstack/echo/v4"
)

const defaultOGImage = "/static/images/og-image.png"

// pageMeta maps a page to its translated title key and canonical path
type pageMeta struct {
	titleKey string
	path     string
	keywords string
	card     string
}

var pageSEO = map[string]pageMeta{
	"home":      {titleKey: "meta.home", path: "/", keywords: "identidade visual, branding, sites, tráfego pago, CRM, automação com IA", card: "summary_large_image"},
	"about":     {titleKey: "meta.about", path: "/sobre", card: "summary_large_image"},
	"services":  {titleKey: "meta.services", path: "/servicos", keywords: "identidade visual, web design, tráfego pago, CRM", card: "summary_large_image"},
	"portfolio": {titleKey: "meta.portfolio", path: "/portfolio", card: "summary_large_image"},
	"contact":   {titleKey: "meta.contact", path: "/contato", card: "summary"},
	"terms":     {titleKey: "meta.terms", path: "/termos", card: "summary"},
	"privacy":   {titleKey: "meta.privacy", path: "/privacidade", card: "summary"},
	"notFound":  {titleKey: "meta.notFound", card: "summary"},
}

// GetSEO returns the SEO configuration for a page in the request language
func GetSEO(c echo.Context, page string) *models.SEO {
	meta, ok := pageSEO[page]
	if !ok {
		return nil
	}
	cfg := getConfig(c)
	lang := middleware.GetLocale(c)

	seo := models.DefaultSEO(
		i18n.Translate(lang, meta.titleKey),
		i18n.Translate(lang, "meta.homeDesc"),
	).WithLocale(lang, altLocales(lang)...).
		WithOGImage(cfg.AppURL + defaultOGImage)
	seo.Keywords = meta.keywords
	seo.TwitterCard = meta.card
	if page == "home" {
		seo.WithStructuredData(models.OrganizationSchema(
			i18n.Translate(lang, "site.name"),
			cfg.AppURL,
			cfg.AppURL+"/static/images/logo.png",
			i18n.Translate(lang, "contact.email"),
		))
	}
	if meta.path != "" {
		seo.WithCanonical(cfg.AppURL + meta.path)
	} else {
		seo.WithNoIndex()
	}
	return seo
}

func altLocales(lang string) []string {
	var out []string
	for _, l := range i18n.Languages {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}
