package middleware

import (
	"context"
	"net/http"
	"strings"

	"mavenestudio/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// CSRFContextKey carries the token into the request context for templates.
const CSRFContextKey contextKey = "csrf"

// csrfExempt lists path prefixes that never carry a token: the JSON lead API
// is called cross-origin and static assets are never posted to.
var csrfExempt = []string{"/api/", "/static/"}

// CSRF protects the wizard and language forms. htmx sends the token in the
// X-CSRF-Token header set on <body>; plain forms post it as _csrf.
func CSRF(cfg *config.Config) echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: http.SameSiteLaxMode,
		Skipper:        csrfSkipper,
	})
}

func csrfSkipper(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range csrfExempt {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// GetCSRFToken returns the token echo's CSRF middleware stored on c
func GetCSRFToken(c echo.Context) string {
	token := c.Get("csrf")
	if token == nil {
		return ""
	}
	if tokenStr, ok := token.(string); ok {
		return tokenStr
	}
	return ""
}

// CSRFToContext copies the token set by echo's CSRF middleware into the
// request context so components can render it without the echo.Context.
func CSRFToContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := GetCSRFToken(c); token != "" {
				ctx := context.WithValue(c.Request().Context(), CSRFContextKey, token)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// CSRFFromContext returns the token stored by CSRFToContext
func CSRFFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(CSRFContextKey).(string); ok {
		return token
	}
	return ""
}
