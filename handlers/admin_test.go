package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"mavenestudio/models"
	"mavenestudio/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func seedAdminLeads(t *testing.T, testDB *gorm.DB) []models.Lead {
	t.Helper()
	now := time.Now()
	leads := []models.Lead{
		{Name: "Ana", Email: "ana@example.com", Phone: "11912345678", Message: "a", Status: models.LeadStatusDelivered, Channel: models.LeadChannelWizard, SubmittedAt: now.Add(-2 * time.Hour)},
		{Name: "Bruno", Email: "bruno@example.com", Phone: "11912345678", Message: "b", Status: models.LeadStatusFailed, Channel: models.LeadChannelAPI, SubmittedAt: now.Add(-time.Hour)},
	}
	for i := range leads {
		require.NoError(t, testDB.Create(&leads[i]).Error)
	}
	return leads
}

func TestAdminListLeads(t *testing.T) {
	testDB := setupTestDB(t)
	seedAdminLeads(t, testDB)
	h := &AdminHandler{DB: testDB}

	_, c, rec := setupEcho(http.MethodGet, "/admin/leads?status=failed", nil)
	require.NoError(t, h.ListLeads(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var page services.LeadPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, "Bruno", page.Leads[0].Name)
}

func TestAdminListLeadsBadDate(t *testing.T) {
	h := &AdminHandler{DB: setupTestDB(t)}
	_, c, _ := setupEcho(http.MethodGet, "/admin/leads?since=yesterday", nil)

	err := h.ListLeads(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestAdminGetLead(t *testing.T) {
	testDB := setupTestDB(t)
	leads := seedAdminLeads(t, testDB)
	h := &AdminHandler{DB: testDB}

	_, c, rec := setupEcho(http.MethodGet, "/admin/leads/"+leads[0].ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(leads[0].ID)
	require.NoError(t, h.GetLead(c))
	assert.Contains(t, rec.Body.String(), `"name":"Ana"`)

	_, c, _ = setupEcho(http.MethodGet, "/admin/leads/missing", nil)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	err := h.GetLead(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestAdminExportLeads(t *testing.T) {
	testDB := setupTestDB(t)
	seedAdminLeads(t, testDB)
	h := &AdminHandler{DB: testDB}

	_, c, rec := setupEcho(http.MethodGet, "/admin/leads.xlsx", nil)
	require.NoError(t, h.ExportLeads(c))

	assert.Equal(t, excelContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment;")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestAdminStats(t *testing.T) {
	testDB := setupTestDB(t)
	seedAdminLeads(t, testDB)
	analytics := services.NewAnalytics(testDB)
	h := &AdminHandler{DB: testDB, Analytics: analytics}

	ctx := t.Context()
	analytics.RecordPageView(ctx, services.PageView{Path: "/"})
	analytics.RecordPageView(ctx, services.PageView{Path: "/"})
	analytics.RecordPageView(ctx, services.PageView{Path: "/portfolio"})

	_, c, rec := setupEcho(http.MethodGet, "/admin/stats?days=7", nil)
	require.NoError(t, h.Stats(c))

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []services.EventCount{{Name: models.EventPageView, Count: 3}}, resp.Events)
	require.NotEmpty(t, resp.TopPages)
	assert.Equal(t, services.EventCount{Name: "/", Count: 2}, resp.TopPages[0])
	assert.Equal(t, map[string]int64{models.LeadStatusDelivered: 1, models.LeadStatusFailed: 1}, resp.Leads)

	_, c, _ = setupEcho(http.MethodGet, "/admin/stats?days=0", nil)
	var he *echo.HTTPError
	require.ErrorAs(t, h.Stats(c), &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
