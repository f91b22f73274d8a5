package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"mavenestudio/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// LeadFilter narrows lead listings. Zero values match everything.
type LeadFilter struct {
	Status  string
	Channel string
	Since   time.Time
	Until   time.Time
	Search  string // matches name, email or company
	Page    int
	PerPage int
}

// LeadPage is one page of leads
type LeadPage struct {
	Leads   []models.Lead `json:"leads"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

func (f LeadFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Channel != "" {
		q = q.Where("channel = ?", f.Channel)
	}
	if !f.Since.IsZero() {
		q = q.Where("submitted_at >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		q = q.Where("submitted_at < ?", f.Until)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR company LIKE ?", like, like, like)
	}
	return q
}

// ListLeads returns leads newest first, paginated
func ListLeads(ctx context.Context, db *gorm.DB, filter LeadFilter) (*LeadPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 200 {
		filter.PerPage = 50
	}

	page := &LeadPage{Page: filter.Page, PerPage: filter.PerPage}
	q := filter.apply(db.WithContext(ctx).Model(&models.Lead{}))
	if err := q.Count(&page.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	err := q.Order("submitted_at DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&page.Leads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return page, nil
}

// GetLead loads one lead by id
func GetLead(ctx context.Context, db *gorm.DB, id string) (*models.Lead, error) {
	var lead models.Lead
	if err := db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

const leadSheet = "Leads"

var leadExportHeaders = []string{
	"Data", "Nome", "E-mail", "WhatsApp", "Empresa", "Serviços", "Orçamento",
	"Prazo", "Mensagem", "Idioma", "Canal", "Status", "Falha", "Página", "Origem",
}

// ExportLeadsExcel writes every lead matching filter (ignoring pagination)
// into a single-sheet workbook.
func ExportLeadsExcel(ctx context.Context, db *gorm.DB, filter LeadFilter) (*bytes.Buffer, error) {
	var leads []models.Lead
	if err := filter.apply(db.WithContext(ctx).Model(&models.Lead{})).Order("submitted_at DESC").Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leadSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range leadExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(leadSheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(leadExportHeaders), 1)
	f.SetCellStyle(leadSheet, "A1", lastHeader, headerStyle)
	f.SetColWidth(leadSheet, "A", "H", 20)
	f.SetColWidth(leadSheet, "I", "I", 60)
	f.SetPanes(leadSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for r, lead := range leads {
		row := []interface{}{
			lead.SubmittedAt.Format("2006-01-02 15:04"),
			lead.Name, lead.Email, lead.Phone, lead.Company, lead.Service,
			lead.Budget, lead.Timeline, lead.Message, lead.Language,
			lead.Channel, lead.Status, lead.FailureDetail, lead.PageURL, lead.Referrer,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(leadSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// CountLeadsByStatus counts leads submitted since the given time per
// delivery status.
func CountLeadsByStatus(ctx context.Context, db *gorm.DB, since time.Time) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("status, COUNT(*) AS count").
		Where("submitted_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// PurgeLeadArchives deletes the stored JSON archive of every lead submitted
// before cutoff and clears its ArchiveKey. The lead rows are kept. It stops at
// the first storage error and returns how many archives were removed so far.
func PurgeLeadArchives(ctx context.Context, db *gorm.DB, storage StorageProvider, cutoff time.Time) (int, error) {
	var leads []models.Lead
	if err := db.WithContext(ctx).
		Where("archive_key <> '' AND submitted_at < ?", cutoff).
		Find(&leads).Error; err != nil {
		return 0, err
	}

	purged := 0
	for _, lead := range leads {
		if err := storage.Remove(ctx, lead.ArchiveKey); err != nil {
			return purged, fmt.Errorf("failed to delete archive of lead %s: %w", lead.ID, err)
		}
		if err := db.WithContext(ctx).Model(&models.Lead{}).
			Where("id = ?", lead.ID).
			Update("archive_key", "").Error; err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}
