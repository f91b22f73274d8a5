package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Delivery status
const (
	LeadStatusDelivered = "delivered"
	LeadStatusFailed    = "failed"
)

// Lead channels
const (
	LeadChannelWizard = "wizard"
	LeadChannelAPI    = "api"
)

// Lead is one final submission of the contact wizard or the lead API,
// stored whether or not the intake webhook accepted it.
type Lead struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Answers
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"not null;index" json:"email"`
	Phone    string `gorm:"not null" json:"phone"`
	Company  string `json:"company,omitempty"`
	Service  string `gorm:"type:text" json:"service"`
	Budget   string `json:"budget,omitempty"`
	Timeline string `json:"timeline,omitempty"`
	Message  string `gorm:"type:text;not null" json:"message"`

	// Submission context
	Channel     string    `gorm:"not null;default:wizard" json:"channel"`
	SessionID   string    `gorm:"index" json:"session_id,omitempty"`
	Language    string    `gorm:"not null;default:pt" json:"language"`
	SubmittedAt time.Time `gorm:"index" json:"submitted_at"`
	PageURL     string    `json:"page_url,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	UserAgent   string    `gorm:"type:text" json:"user_agent,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`

	// Delivery
	Status        string `gorm:"not null;default:failed;index" json:"status"`
	FailureStatus int    `json:"failure_status,omitempty"`
	FailureDetail string `gorm:"type:text" json:"failure_detail,omitempty"`
	ArchiveKey    string `json:"archive_key,omitempty"`
	NotifiedEmail bool   `json:"notified_email"`
	NotifiedChat  bool   `json:"notified_chat"`
}

// BeforeCreate hook to generate UUID
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Lead
func (Lead) TableName() string {
	return "leads"
}

// IsDelivered reports whether the primary intake endpoint accepted the lead
func (l *Lead) IsDelivered() bool {
	return l.Status == LeadStatusDelivered
}
