package services

import (
	"context"
	"time"

	"mavenestudio/models"
	"mavenestudio/services/leadform"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LeadContentName labels lead conversions, as sent with the pixel event
const LeadContentName = "Formulário de Contato"

// PageView describes one rendered page
type PageView struct {
	Path      string
	Language  string
	Referrer  string
	UserAgent string
}

// Analytics records page views and lead conversions. A nil DB makes every
// call a no-op.
type Analytics struct {
	DB *gorm.DB
}

func NewAnalytics(db *gorm.DB) *Analytics {
	return &Analytics{DB: db}
}

// RecordPageView stores a PageView event. Failures are logged only.
func (a *Analytics) RecordPageView(ctx context.Context, pv PageView) {
	a.record(ctx, &models.AnalyticsEvent{
		Name:      models.EventPageView,
		Path:      pv.Path,
		Language:  pv.Language,
		Referrer:  pv.Referrer,
		UserAgent: pv.UserAgent,
	})
}

// TrackConversion stores a Lead event for a delivered submission
func (a *Analytics) TrackConversion(ctx context.Context, sessionID string, meta leadform.Metadata) {
	a.record(ctx, &models.AnalyticsEvent{
		Name:        models.EventLead,
		Path:        meta.PageURL,
		Language:    meta.Language,
		SessionID:   sessionID,
		ContentName: LeadContentName,
		Referrer:    meta.Referrer,
		UserAgent:   meta.UserAgent,
	})
}

func (a *Analytics) record(ctx context.Context, event *models.AnalyticsEvent) {
	if a == nil || a.DB == nil {
		return
	}
	if err := a.DB.WithContext(ctx).Create(event).Error; err != nil {
		log.Warn().Err(err).Str("event", event.Name).Msg("Failed to record analytics event")
	}
}

// EventCount is the number of events of one name
type EventCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// CountEvents groups events recorded since the given time by name
func (a *Analytics) CountEvents(ctx context.Context, since time.Time) ([]EventCount, error) {
	var counts []EventCount
	err := a.DB.WithContext(ctx).
		Model(&models.AnalyticsEvent{}).
		Select("name, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("name").
		Order("name").
		Scan(&counts).Error
	return counts, err
}

// TopPages returns the most viewed paths since the given time
func (a *Analytics) TopPages(ctx context.Context, since time.Time, limit int) ([]EventCount, error) {
	var counts []EventCount
	err := a.DB.WithContext(ctx).
		Model(&models.AnalyticsEvent{}).
		Select("path AS name, COUNT(*) AS count").
		Where("name = ? AND created_at >= ?", models.EventPageView, since).
		Group("path").
		Order("count DESC, path").
		Limit(limit).
		Scan(&counts).Error
	return counts, err
}
