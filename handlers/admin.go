package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mavenestudio/middleware"
	"mavenestudio/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler exposes stored leads and analytics to the studio team
type AdminHandler struct {
	DB        *gorm.DB
	Analytics *services.Analytics
}

// StatsResponse summarizes recent site activity
type StatsResponse struct {
	Since    time.Time             `json:"since"`
	Events   []services.EventCount `json:"events"`
	TopPages []services.EventCount `json:"top_pages"`
	Leads    map[string]int64      `json:"leads"`
}

// ListLeads handles GET /admin/leads
func (h *AdminHandler) ListLeads(c echo.Context) error {
	filter, err := parseLeadFilter(c)
	if err != nil {
		return err
	}

	page, err := services.ListLeads(c.Request().Context(), h.DB, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list leads")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list leads")
	}
	return c.JSON(http.StatusOK, page)
}

// GetLead handles GET /admin/leads/:id
func (h *AdminHandler) GetLead(c echo.Context) error {
	lead, err := services.GetLead(c.Request().Context(), h.DB, c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Lead not found")
	}
	if err != nil {
		log.Error().Err(err).Str("lead_id", c.Param("id")).Msg("Failed to load lead")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load lead")
	}
	return c.JSON(http.StatusOK, lead)
}

// ExportLeads handles GET /admin/leads.xlsx
func (h *AdminHandler) ExportLeads(c echo.Context) error {
	filter, err := parseLeadFilter(c)
	if err != nil {
		return err
	}

	buf, err := services.ExportLeadsExcel(c.Request().Context(), h.DB, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to export leads")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to export leads")
	}

	log.Info().Str("admin", middleware.GetAdminUser(c)).Int("bytes", buf.Len()).Msg("Leads exported")

	filename := fmt.Sprintf("leads-%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, excelContentType, buf.Bytes())
}

// Stats handles GET /admin/stats?days=N
func (h *AdminHandler) Stats(c echo.Context) error {
	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			return echo.NewHTTPError(http.StatusBadRequest, "days must be between 1 and 365")
		}
		days = n
	}

	ctx := c.Request().Context()
	resp := StatsResponse{
		Since: time.Now().AddDate(0, 0, -days).Truncate(24 * time.Hour),
		Leads: map[string]int64{},
	}

	var err error
	if h.Analytics != nil {
		if resp.Events, err = h.Analytics.CountEvents(ctx, resp.Since); err != nil {
			log.Error().Err(err).Msg("Failed to count events")
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load stats")
		}
		if resp.TopPages, err = h.Analytics.TopPages(ctx, resp.Since, 10); err != nil {
			log.Error().Err(err).Msg("Failed to load top pages")
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load stats")
		}
	}

	if resp.Leads, err = services.CountLeadsByStatus(ctx, h.DB, resp.Since); err != nil {
		log.Error().Err(err).Msg("Failed to count leads")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load stats")
	}
	return c.JSON(http.StatusOK, resp)
}

// parseLeadFilter reads status, channel, q, since, until, page and per_page
func parseLeadFilter(c echo.Context) (services.LeadFilter, error) {
	filter := services.LeadFilter{
		Status:  c.QueryParam("status"),
		Channel: c.QueryParam("channel"),
		Search:  c.QueryParam("q"),
	}

	for name, dst := range map[string]*time.Time{"since": &filter.Since, "until": &filter.Until} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, name+" must be YYYY-MM-DD")
		}
		*dst = t
	}

	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	return filter, nil
}
