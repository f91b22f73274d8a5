package services

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"
	"sync"
	"time"

	"mavenestudio/models"
	"mavenestudio/services/leadform"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// followUpTimeout bounds archive and notifications of one lead
const followUpTimeout = 30 * time.Second

// LeadPipeline delivers a submission through the dispatcher and keeps a
// local record of it. It satisfies leadform.Submitter: only the dispatcher's
// result reaches the caller; storage and notifications are best-effort.
type LeadPipeline struct {
	Dispatcher leadform.Submitter
	DB         *gorm.DB
	Storage    StorageProvider
	Notifiers  []LeadNotifier

	policy *bluemonday.Policy
	wg     sync.WaitGroup
}

func NewLeadPipeline(dispatcher leadform.Submitter, db *gorm.DB, storage StorageProvider, notifiers ...LeadNotifier) *LeadPipeline {
	return &LeadPipeline{
		Dispatcher: dispatcher,
		DB:         db,
		Storage:    storage,
		Notifiers:  notifiers,
		policy:     bluemonday.StrictPolicy(),
	}
}

// Submit implements leadform.Submitter
func (p *LeadPipeline) Submit(ctx context.Context, sub leadform.Submission) error {
	if sub.Metadata.SubmittedAt.IsZero() {
		sub.Metadata.SubmittedAt = time.Now()
	}

	deliveryErr := p.Dispatcher.Submit(ctx, sub)

	lead := p.newLead(sub)
	if deliveryErr != nil {
		lead.Status = models.LeadStatusFailed
		lead.FailureDetail = deliveryErr.Error()
		var de *leadform.DeliveryError
		if errors.As(deliveryErr, &de) {
			lead.FailureStatus = de.StatusCode
		}
	} else {
		lead.Status = models.LeadStatusDelivered
	}

	if p.DB != nil {
		if err := p.DB.WithContext(context.WithoutCancel(ctx)).Create(lead).Error; err != nil {
			log.Error().Err(err).Str("session_id", sub.SessionID).Msg("Failed to store lead")
		}
	}

	logger := log.With().Str("lead_id", lead.ID).Str("status", lead.Status).Logger()
	if deliveryErr != nil {
		logger.Warn().Err(deliveryErr).Msg("Lead not delivered")
		return deliveryErr
	}
	logger.Info().Str("channel", lead.Channel).Msg("Lead delivered")

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), followUpTimeout)
		defer cancel()
		p.followUp(fctx, lead, leadform.NewPayload(sub))
	}()
	return nil
}

// Wait blocks until pending follow-ups finish
func (p *LeadPipeline) Wait() {
	p.wg.Wait()
}

// followUp archives the delivered payload and runs the notifiers
func (p *LeadPipeline) followUp(ctx context.Context, lead *models.Lead, payload leadform.Payload) {
	updates := map[string]interface{}{}

	if p.Storage != nil {
		key, err := p.archive(ctx, lead, payload)
		if err != nil {
			log.Warn().Err(err).Str("lead_id", lead.ID).Msg("Failed to archive lead")
		} else {
			lead.ArchiveKey = key
			updates["archive_key"] = key
		}
	}

	for _, n := range p.Notifiers {
		if err := n.NotifyLead(ctx, lead); err != nil {
			log.Warn().Err(err).Str("lead_id", lead.ID).Str("notifier", n.Channel()).Msg("Lead notification failed")
			continue
		}
		switch n.Channel() {
		case NotifyChannelEmail:
			lead.NotifiedEmail = true
			updates["notified_email"] = true
		case NotifyChannelTelegram:
			lead.NotifiedChat = true
			updates["notified_chat"] = true
		}
	}

	if p.DB != nil && lead.ID != "" && len(updates) > 0 {
		if err := p.DB.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", lead.ID).Updates(updates).Error; err != nil {
			log.Warn().Err(err).Str("lead_id", lead.ID).Msg("Failed to update lead follow-up state")
		}
	}
}

func (p *LeadPipeline) archive(ctx context.Context, lead *models.Lead, payload leadform.Payload) (string, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	key := GenerateLeadArchiveKey(lead.ID, lead.SubmittedAt)
	if _, err := p.Storage.Put(ctx, key, body, "application/json"); err != nil {
		return "", err
	}
	return key, nil
}

// newLead builds the stored record; free text is stripped of markup and
// kept unescaped, since every renderer escapes on output.
func (p *LeadPipeline) newLead(sub leadform.Submission) *models.Lead {
	clean := func(s string) string {
		if p.policy != nil {
			s = html.UnescapeString(p.policy.Sanitize(s))
		}
		return strings.TrimSpace(s)
	}

	channel := sub.Metadata.Channel
	if channel == "" {
		channel = models.LeadChannelWizard
	}

	a := sub.Answers
	return &models.Lead{
		ID:          uuid.New().String(),
		Name:        clean(a.Name),
		Email:       strings.TrimSpace(a.Email),
		Phone:       strings.TrimSpace(a.Phone),
		Company:     clean(a.Company),
		Service:     clean(a.Service),
		Budget:      clean(a.Budget),
		Timeline:    clean(a.Timeline),
		Message:     clean(a.Message),
		Channel:     channel,
		SessionID:   sub.SessionID,
		Language:    sub.Metadata.Language,
		SubmittedAt: sub.Metadata.SubmittedAt.UTC(),
		PageURL:     sub.Metadata.PageURL,
		Referrer:    sub.Metadata.Referrer,
		UserAgent:   sub.Metadata.UserAgent,
		IPAddress:   sub.Metadata.RemoteIP,
	}
}
