package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type contextKey string

const NonceKey contextKey = "csp_nonce"

// GenerateNonce creates a random nonce string
func GenerateNonce() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Third-party origins used by the site: htmx from unpkg, the Meta Pixel and
// the Turnstile widget on the last wizard step.
const (
	htmxOrigin      = "https://unpkg.com"
	pixelScript     = "https://connect.facebook.net"
	pixelEndpoint   = "https://www.facebook.com"
	turnstileOrigin = "https://challenges.cloudflare.com"
)

// CSPNonce stores a fresh nonce on the echo and request contexts and sends a
// policy allowing only scripts that carry it. imgSources are extra origins
// allowed to serve images, such as the R2 public bucket.
func CSPNonce(imgSources ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			nonce, err := GenerateNonce()
			if err != nil {
				log.Error().Err(err).Msg("Failed to generate nonce")
				nonce = "fallback-nonce-value"
			}

			c.Set(string(NonceKey), nonce)
			ctx := context.WithValue(c.Request().Context(), NonceKey, nonce)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Response().Header().Set("Content-Security-Policy", buildCSP(nonce, imgSources))
			return next(c)
		}
	}
}

func buildCSP(nonce string, imgSources []string) string {
	directives := [][]string{
		{"default-src", "'self'"},
		{"script-src", "'self'", "'nonce-" + nonce + "'", htmxOrigin, pixelScript, turnstileOrigin},
		{"style-src", "'self'", "'unsafe-inline'", "https://fonts.googleapis.com"},
		append([]string{"img-src", "'self'", "data:", pixelEndpoint}, imgSources...),
		{"font-src", "'self'", "https://fonts.gstatic.com"},
		{"connect-src", "'self'", pixelEndpoint, pixelScript, turnstileOrigin},
		{"frame-src", turnstileOrigin},
		{"base-uri", "'self'"},
		{"form-action", "'self'"},
	}
	parts := make([]string, len(directives))
	for i, d := range directives {
		parts[i] = strings.Join(d, " ")
	}
	return strings.Join(parts, "; ")
}

// GetNonce retrieves the nonce from the context
func GetNonce(ctx context.Context) string {
	if val, ok := ctx.Value(NonceKey).(string); ok {
		return val
	}
	return ""
}
