package services

import (
	"context"
	"testing"
	"time"

	"mavenestudio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func seedLeads(t *testing.T, db *gorm.DB) {
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	leads := []models.Lead{
		{Name: "Ana", Email: "ana@example.com", Phone: "11912345678", Message: "a", Status: models.LeadStatusDelivered, Channel: models.LeadChannelWizard, SubmittedAt: base},
		{Name: "Bruno", Email: "bruno@example.com", Phone: "11912345678", Company: "Acme", Message: "b", Status: models.LeadStatusFailed, Channel: models.LeadChannelAPI, SubmittedAt: base.Add(time.Hour)},
		{Name: "Carla", Email: "carla@example.com", Phone: "11912345678", Message: "c", Status: models.LeadStatusDelivered, Channel: models.LeadChannelWizard, SubmittedAt: base.Add(2 * time.Hour)},
	}
	for i := range leads {
		require.NoError(t, db.Create(&leads[i]).Error)
	}
}

func TestListLeads(t *testing.T) {
	db := setupTestDB(t)
	seedLeads(t, db)
	ctx := context.Background()

	page, err := ListLeads(ctx, db, LeadFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Leads, 3)
	assert.Equal(t, "Carla", page.Leads[0].Name)

	page, err = ListLeads(ctx, db, LeadFilter{Status: models.LeadStatusDelivered, PerPage: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, "Ana", page.Leads[0].Name)

	page, err = ListLeads(ctx, db, LeadFilter{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, "Bruno", page.Leads[0].Name)

	page, err = ListLeads(ctx, db, LeadFilter{Since: time.Date(2026, 10, 1, 10, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestGetLead(t *testing.T) {
	db := setupTestDB(t)
	seedLeads(t, db)

	var first models.Lead
	require.NoError(t, db.First(&first).Error)

	got, err := GetLead(context.Background(), db, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, got.Name)

	_, err = GetLead(context.Background(), db, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestExportLeadsExcel(t *testing.T) {
	db := setupTestDB(t)
	seedLeads(t, db)

	buf, err := ExportLeadsExcel(context.Background(), db, LeadFilter{Channel: models.LeadChannelWizard})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(leadSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, leadExportHeaders, rows[0])
	assert.Equal(t, "Carla", rows[1][1])
	assert.Equal(t, "Ana", rows[2][1])
}

func TestCountLeadsByStatus(t *testing.T) {
	db := setupTestDB(t)
	seedLeads(t, db)

	counts, err := CountLeadsByStatus(context.Background(), db, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{models.LeadStatusDelivered: 2, models.LeadStatusFailed: 1}, counts)

	counts, err = CountLeadsByStatus(context.Background(), db, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestPurgeLeadArchives(t *testing.T) {
	db := setupTestDB(t)
	storage := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	old := models.Lead{Name: "Ana", Email: "ana@example.com", Phone: "11912345678", Message: "a", SubmittedAt: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)}
	recent := models.Lead{Name: "Bia", Email: "bia@example.com", Phone: "11912345678", Message: "b", SubmittedAt: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)}
	for _, l := range []*models.Lead{&old, &recent} {
		require.NoError(t, db.Create(l).Error)
		l.ArchiveKey = GenerateLeadArchiveKey(l.ID, l.SubmittedAt)
		_, err := storage.Put(ctx, l.ArchiveKey, []byte(`{}`), "application/json")
		require.NoError(t, err)
		require.NoError(t, db.Save(l).Error)
	}

	n, err := PurgeLeadArchives(ctx, db, storage, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, _, err = storage.Open(ctx, old.ArchiveKey)
	assert.Error(t, err)
	rc, _, err := storage.Open(ctx, recent.ArchiveKey)
	require.NoError(t, err)
	rc.Close()

	reloaded, err := GetLead(ctx, db, old.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.ArchiveKey)

	n, err = PurgeLeadArchives(ctx, db, storage, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, n)
}
