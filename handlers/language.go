package handlers

import (
	"net/http"
	"strings"

	"mavenestudio/middleware"
	"mavenestudio/services/i18n"

	"github.com/labstack/echo/v4"
)

// LanguageHandler stores the chosen display language and returns to the
// page the visitor came from.
func LanguageHandler(c echo.Context) error {
	lang := c.Param("lang")
	if !i18n.IsSupported(lang) {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported language")
	}
	middleware.SetLanguageCookie(c, lang)

	next := safeRedirect(c.QueryParam("next"))
	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", next)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, next)
}

// safeRedirect only allows local absolute paths
func safeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}
