package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"mavenestudio/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfServer(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.Use(CSRF(cfg), CSRFToContext())
	ok := func(c echo.Context) error {
		return c.String(http.StatusOK, CSRFFromContext(c.Request().Context()))
	}
	e.GET("/contato", ok)
	e.POST("/contato/next", ok)
	e.POST("/api/leads", ok)
	return e
}

func TestCSRF(t *testing.T) {
	e := csrfServer(&config.Config{Environment: "development"})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contato", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Body.String()
	require.NotEmpty(t, token)

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "_csrf" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)

	t.Run("wizard post without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contato/next", strings.NewReader("value=Ana"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("htmx header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contato/next", strings.NewReader("value=Ana"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.Header.Set("X-CSRF-Token", token)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("form field token", func(t *testing.T) {
		form := url.Values{"value": {"Ana"}, "_csrf": {token}}
		req := httptest.NewRequest(http.MethodPost, "/contato/next", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("lead API is exempt", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestCSRFSecureCookieInProduction(t *testing.T) {
	e := csrfServer(&config.Config{Environment: "production"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contato", nil))

	require.NotEmpty(t, rec.Result().Cookies())
	assert.True(t, rec.Result().Cookies()[0].Secure)
}

func TestGetCSRFToken(t *testing.T) {
	e := echo.New()
	c := e.NewContext(nil, nil)
	assert.Equal(t, "", GetCSRFToken(c))

	c.Set("csrf", 123)
	assert.Equal(t, "", GetCSRFToken(c))

	c.Set("csrf", "abc")
	assert.Equal(t, "abc", GetCSRFToken(c))
	assert.Equal(t, "", CSRFFromContext(context.Background()))
}
