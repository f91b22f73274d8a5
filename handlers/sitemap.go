package handlers

import (
	"encoding/xml"
	"net/http"

	"mavenestudio/services"
	"mavenestudio/services/i18n"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// sitemapAlternate is an hreflang link to the same page in another language
type sitemapAlternate struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

type SitemapURL struct {
	Loc        string             `xml:"loc"`
	ChangeFreq string             `xml:"changefreq,omitempty"`
	Priority   float32            `xml:"priority,omitempty"`
	Alternates []sitemapAlternate `xml:"xhtml:link"`
}

type SitemapURLSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	Xmlns      string       `xml:"xmlns,attr"`
	XmlnsXHTML string       `xml:"xmlns:xhtml,attr"`
	URLs       []SitemapURL `xml:"url"`
}

type sitemapPage struct {
	path       string
	changeFreq string
	priority   float32
}

var sitemapPages = []sitemapPage{
	{"/", "weekly", 1.0},
	{"/sobre", "monthly", 0.8},
	{"/servicos", "monthly", 0.8},
	{"/portfolio", "weekly", 0.9},
	{"/contato", "monthly", 0.9},
	{"/termos", "yearly", 0.3},
	{"/privacidade", "yearly", 0.3},
}

// sitemapEntry lists loc in every display language. Pages switch language
// through ?lang=, which the locale middleware honours.
func sitemapEntry(loc, changeFreq string, priority float32) SitemapURL {
	u := SitemapURL{Loc: loc, ChangeFreq: changeFreq, Priority: priority}
	for _, lang := range i18n.Languages {
		href := loc + "?lang=" + lang
		if lang == i18n.DefaultLanguage() {
			href = loc
		}
		u.Alternates = append(u.Alternates, sitemapAlternate{Rel: "alternate", HrefLang: lang, Href: href})
	}
	return u
}

// GetSitemapHandler lists the site pages and every portfolio project with a
// detail page
func GetSitemapHandler(c echo.Context) error {
	baseURL := getConfig(c).AppURL

	var urls []SitemapURL
	for _, p := range sitemapPages {
		urls = append(urls, sitemapEntry(baseURL+p.path, p.changeFreq, p.priority))
	}

	content, err := services.Content()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load portfolio for sitemap")
	} else {
		for _, p := range content.Projects {
			if p.HasDetailPage() {
				urls = append(urls, sitemapEntry(baseURL+"/portfolio/"+p.ID, "monthly", 0.7))
			}
		}
	}

	out, err := xml.MarshalIndent(SitemapURLSet{
		Xmlns:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XmlnsXHTML: "http://www.w3.org/1999/xhtml",
		URLs:       urls,
	}, "", "  ")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, append([]byte(xml.Header), out...))
}

// RobotsHandler serves robots.txt pointing at the sitemap
func RobotsHandler(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin\nDisallow: /api/\n\nSitemap: " + getConfig(c).AppURL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}
