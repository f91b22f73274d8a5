package middleware

import (
	"crypto/subtle"
	"net/http"

	"mavenestudio/config"
	"mavenestudio/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ContextKeyAdmin holds the authenticated admin user name
const ContextKeyAdmin = "admin_user"

// RequireAdmin protects the admin area with HTTP Basic auth checked against
// ADMIN_USER and the bcrypt ADMIN_PASSWORD_HASH. Without a hash every
// request is refused. Failures are reported to monitor, which may be nil;
// an IP it blocks gets 429 until its failures age out.
func RequireAdmin(cfg *config.Config, monitor *services.SecurityEventMonitor) echo.MiddlewareFunc {
	if !cfg.AdminEnabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusNotFound)
			}
		}
	}

	basicAuth := echomw.BasicAuthWithConfig(echomw.BasicAuthConfig{
		Realm: "Maven Admin",
		Validator: func(user, password string, c echo.Context) (bool, error) {
			if !CheckAdminCredentials(cfg, user, password) {
				log.Warn().Str("ip", c.RealIP()).Str("user", user).Msg("Admin authentication failed")
				if monitor != nil {
					monitor.TrackFailedLogin(c.RealIP())
				}
				return false, nil
			}
			c.Set(ContextKeyAdmin, user)
			return true, nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		authenticated := basicAuth(next)
		return func(c echo.Context) error {
			if monitor != nil && monitor.Blocked(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many failed logins")
			}
			return authenticated(c)
		}
	}
}

// CheckAdminCredentials compares the user name in constant time and the
// password against its bcrypt hash.
func CheckAdminCredentials(cfg *config.Config, user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.AdminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password)) == nil
	return userOK && passOK
}

// GetAdminUser returns the authenticated admin user name, if any
func GetAdminUser(c echo.Context) string {
	user, _ := c.Get(ContextKeyAdmin).(string)
	return user
}
