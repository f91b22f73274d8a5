package middleware

import (
	"context"
	"net/http"
	"strings"

	"mavenestudio/services"

	"github.com/labstack/echo/v4"
)

// PageViewRecorder stores one page view
type PageViewRecorder interface {
	RecordPageView(ctx context.Context, pv services.PageView)
}

// TrackPageViews records a PageView for every full-page GET that rendered
// successfully. htmx fragment requests and static files are ignored.
func TrackPageViews(recorder PageViewRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			req := c.Request()
			if err != nil || recorder == nil || req.Method != http.MethodGet {
				return err
			}
			if req.Header.Get("HX-Request") == "true" || c.Response().Status != http.StatusOK {
				return err
			}
			path := req.URL.Path
			if strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/admin") || strings.HasPrefix(path, "/api/") {
				return err
			}

			recorder.RecordPageView(context.WithoutCancel(req.Context()), services.PageView{
				Path:      path,
				Language:  GetLocale(c),
				Referrer:  req.Referer(),
				UserAgent: req.UserAgent(),
			})
			return err
		}
	}
}
