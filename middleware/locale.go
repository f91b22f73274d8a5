package middleware

import (
	"mavenestudio/config"
	"mavenestudio/services/i18n"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// LangCookieName stores the visitor's display language for a year.
const LangCookieName = "lang"

// Locale middleware handles language detection and persistence.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. Default (DEFAULT_LANGUAGE, "pt")
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := c.QueryParam("lang")
			if lang != "" {
				if !i18n.IsSupported(lang) {
					lang = i18n.DefaultLanguage()
				}
				setLangCookie(c, lang, cfg != nil && cfg.IsProduction())
			} else if cookie, err := c.Cookie(LangCookieName); err == nil && i18n.IsSupported(cookie.Value) {
				lang = cookie.Value
			}

			if lang == "" {
				lang = fromAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			}

			c.Set("locale", lang)

			// Templ components read the language from the request context
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// fromAcceptLanguage picks the supported primary tag with the highest
// q-value. Ties keep header order; q=0 means "not acceptable".
func fromAcceptLanguage(header string) string {
	best, bestQ := i18n.DefaultLanguage(), 0.0
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		primary := strings.ToLower(strings.SplitN(strings.TrimSpace(fields[0]), "-", 2)[0])
		if !i18n.IsSupported(primary) {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			if v, ok := strings.CutPrefix(strings.TrimSpace(param), "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					q = parsed
				}
			}
		}
		if q > bestQ {
			best, bestQ = primary, q
		}
	}
	return best
}

// SetLanguageCookie sets the language cookie
func SetLanguageCookie(c echo.Context, lang string) {
	cfg, ok := c.Get("config").(*config.Config)
	setLangCookie(c, lang, ok && cfg.IsProduction())
}

func setLangCookie(c echo.Context, lang string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     LangCookieName,
		Value:    lang,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage()
}
