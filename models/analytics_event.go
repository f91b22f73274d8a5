package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Analytics event names, mirroring the Meta Pixel standard events
const (
	EventPageView = "PageView"
	EventLead     = "Lead"
)

// AnalyticsEvent is a server-side record of a page view or a lead conversion.
type AnalyticsEvent struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Name        string `gorm:"not null;index" json:"name"`
	Path        string `gorm:"index" json:"path"`
	Language    string `json:"language"`
	SessionID   string `gorm:"index" json:"session_id,omitempty"`
	ContentName string `json:"content_name,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	UserAgent   string `gorm:"type:text" json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID
func (e *AnalyticsEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for AnalyticsEvent
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
