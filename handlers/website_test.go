package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticPages(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		handler echo.HandlerFunc
		want    string
	}{
		{"Home", "/", HomeHandler, "Marcas que conectam,"},
		{"About", "/sobre", WebsiteAboutHandler, "Um estúdio criativo"},
		{"Services", "/servicos", WebsiteServicesHandler, "Tudo o que sua marca precisa"},
		{"Terms", "/termos", WebsiteTermsHandler, "Termos de Uso"},
		{"Privacy", "/privacidade", WebsitePrivacyHandler, "Política de Privacidade"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c, rec := setupEcho(http.MethodGet, tt.path, nil)
			require.NoError(t, tt.handler(c))

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, tt.want)
			assert.Contains(t, body, `<link rel="canonical" href="`+testAppURL+tt.path+`"`)
		})
	}
}

func TestHomeOrganizationSchema(t *testing.T) {
	_, c, rec := setupEcho(http.MethodGet, "/", nil)
	require.NoError(t, HomeHandler(c))

	body := rec.Body.String()
	assert.Contains(t, body, `<script type="application/ld+json"`)
	assert.Contains(t, body, `"url":"`+testAppURL+`"`)
}

func TestPortfolioHandler(t *testing.T) {
	t.Run("FullPage", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/portfolio", nil)
		require.NoError(t, PortfolioHandler(c))

		body := rec.Body.String()
		assert.Contains(t, body, "<html")
		assert.Contains(t, body, `id="portfolio-results"`)
		assert.Contains(t, body, "Kyven Figure Store")
		assert.Contains(t, body, "Natu Life")
	})

	t.Run("HTMXFilter", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/portfolio?type=branding", nil)
		require.NoError(t, PortfolioHandler(withHTMX(c)))

		body := rec.Body.String()
		assert.NotContains(t, body, "<html")
		assert.Contains(t, body, "Lealdino Jorge")
		assert.NotContains(t, body, "Kyven Figure Store")
	})

	t.Run("UnknownFilterShowsAll", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/portfolio?type=print", nil)
		require.NoError(t, PortfolioHandler(withHTMX(c)))
		assert.Contains(t, rec.Body.String(), "Kyven Figure Store")
	})
}

func TestProjectHandler(t *testing.T) {
	t.Run("Gallery", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/portfolio/natulife", nil)
		c.SetParamNames("id")
		c.SetParamValues("natulife")
		require.NoError(t, ProjectHandler(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<title>Natu Life | Maven Estúdio</title>")
		assert.Contains(t, body, "natulife-16.png")
		assert.Contains(t, body, testAppURL+"/portfolio/natulife")
	})

	for _, id := range []string{"kyven-figure", "missing"} {
		t.Run("Redirect_"+id, func(t *testing.T) {
			_, c, rec := setupEcho(http.MethodGet, "/portfolio/"+id, nil)
			c.SetParamNames("id")
			c.SetParamValues(id)
			require.NoError(t, ProjectHandler(c))

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestLanguageHandler(t *testing.T) {
	t.Run("SetsCookieAndRedirects", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/language/en?next=%2Fportfolio%3Ftype%3Dweb", nil)
		c.SetParamNames("lang")
		c.SetParamValues("en")
		require.NoError(t, LanguageHandler(c))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/portfolio?type=web", rec.Header().Get(echo.HeaderLocation))
		cookie := findCookie(rec, "lang")
		require.NotNil(t, cookie)
		assert.Equal(t, "en", cookie.Value)
	})

	t.Run("HTMX", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/language/es?next=/sobre", nil)
		c.SetParamNames("lang")
		c.SetParamValues("es")
		require.NoError(t, LanguageHandler(withHTMX(c)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/sobre", rec.Header().Get("HX-Redirect"))
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/language/fr", nil)
		c.SetParamNames("lang")
		c.SetParamValues("fr")

		var he *echo.HTTPError
		require.ErrorAs(t, LanguageHandler(c), &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/sobre", safeRedirect("/sobre"))
	assert.Equal(t, "/", safeRedirect(""))
	assert.Equal(t, "/", safeRedirect("https://evil.example.com"))
	assert.Equal(t, "/", safeRedirect("//evil.example.com"))
	assert.Equal(t, "/", safeRedirect(`/\evil.example.com`))
}

func TestSitemapAndRobots(t *testing.T) {
	_, c, rec := setupEcho(http.MethodGet, "/sitemap.xml", nil)
	require.NoError(t, GetSitemapHandler(c))

	body := rec.Body.String()
	assert.Contains(t, body, "<loc>"+testAppURL+"/contato</loc>")
	assert.Contains(t, body, "<loc>"+testAppURL+"/portfolio/lealdino</loc>")
	assert.NotContains(t, body, "/portfolio/kyven-figure")
	assert.Contains(t, body, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.Contains(t, body, `<xhtml:link rel="alternate" hreflang="es" href="`+testAppURL+`/sobre?lang=es"></xhtml:link>`)
	assert.Contains(t, body, `<xhtml:link rel="alternate" hreflang="pt" href="`+testAppURL+`/sobre"></xhtml:link>`)

	_, c, rec = setupEcho(http.MethodGet, "/robots.txt", nil)
	require.NoError(t, RobotsHandler(c))
	assert.Contains(t, rec.Body.String(), "Disallow: /admin")
	assert.Contains(t, rec.Body.String(), "Sitemap: "+testAppURL+"/sitemap.xml")
}

func TestHTTPErrorHandler(t *testing.T) {
	t.Run("NotFoundPage", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/nada", nil)
		HTTPErrorHandler(echo.ErrNotFound, c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Página não encontrada")
		assert.Contains(t, rec.Body.String(), `name="robots" content="noindex`)
	})

	t.Run("RecoveryPage", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/", nil)
		HTTPErrorHandler(errors.New("kaboom"), c)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Algo deu errado ao carregar o site")
		assert.NotContains(t, rec.Body.String(), "kaboom")
	})

	t.Run("APIJSON", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/leads", nil)
		HTTPErrorHandler(echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), c)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"error":"slow down"}`, rec.Body.String())
	})

	t.Run("HTMXToast", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/contato/next", nil)
		HTTPErrorHandler(errors.New("kaboom"), withHTMX(c))

		assert.Equal(t, "none", rec.Header().Get("HX-Reswap"))
		assert.Contains(t, rec.Body.String(), "hx-swap-oob")
		assert.Contains(t, rec.Body.String(), "Falha ao enviar o formulário.")
	})

	t.Run("HeadHasNoBody", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodHead, "/nada", nil)
		HTTPErrorHandler(echo.ErrNotFound, c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
