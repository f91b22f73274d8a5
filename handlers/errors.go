package handlers

import (
	"errors"
	"net/http"
	"strings"

	"mavenestudio/services/leadform"
	"mavenestudio/templates/components"
	"mavenestudio/templates/pages"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// HTTPErrorHandler renders failures for the kind of client that asked:
// JSON for the API and admin, a toast for htmx, and the 404 or recovery
// page for browsers.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= 500 {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Request failed")
	}

	var renderErr error
	path := c.Request().URL.Path
	switch {
	case c.Request().Method == http.MethodHead:
		renderErr = c.NoContent(code)
	case strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/admin"):
		renderErr = c.JSON(code, map[string]string{"error": message})
	case isHTMX(c):
		if code >= 500 {
			message = components.T(c.Request().Context(), "form.errors.submitFailed")
		}
		notice := leadform.Notice{Title: message, Destructive: true}
		c.Response().Header().Set("HX-Reswap", "none")
		renderErr = render(c, code, components.Toasts([]leadform.Notice{notice}, true))
	case code == http.StatusNotFound:
		renderErr = renderPage(c, code, newPage(c, GetSEO(c, "notFound")), pages.NotFound())
	case code >= 500:
		page := newPage(c, GetSEO(c, "notFound"))
		page.SEO.Title = components.T(c.Request().Context(), "errors.recovery.title")
		page.Minimal = true
		renderErr = renderPage(c, code, page, pages.Recovery())
	default:
		renderErr = c.String(code, message)
	}

	if renderErr != nil {
		log.Error().Err(renderErr).Msg("Failed to render error response")
	}
}
