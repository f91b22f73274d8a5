package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"mavenestudio/models"
	"mavenestudio/services/leadform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	mu    sync.Mutex
	err   error
	calls []leadform.Submission
}

func (s *stubDispatcher) Submit(ctx context.Context, sub leadform.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sub)
	return s.err
}

type stubNotifier struct {
	channel string
	err     error
	mu      sync.Mutex
	leads   []string
}

func (n *stubNotifier) Channel() string { return n.channel }

func (n *stubNotifier) NotifyLead(ctx context.Context, lead *models.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leads = append(n.leads, lead.Name)
	return n.err
}

func pipelineSubmission() leadform.Submission {
	return leadform.Submission{
		SessionID: "sess-1",
		Answers: leadform.Answers{
			Name:    "Ana <b>Silva</b>",
			Email:   " ana@example.com ",
			Phone:   "(11) 91234-5678",
			Service: "Identidade Visual, CRM",
			Message: "Rebrand & site",
		},
		Metadata: leadform.Metadata{
			Language:    "pt",
			SubmittedAt: time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC),
			PageURL:     "https://mavenestudio.com.br/contato",
			RemoteIP:    "10.0.0.1",
		},
	}
}

func TestLeadPipelineDelivered(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	storage := NewLocalStorage(dir)
	email := &stubNotifier{channel: NotifyChannelEmail}
	chat := &stubNotifier{channel: NotifyChannelTelegram, err: errors.New("telegram down")}
	dispatcher := &stubDispatcher{}

	p := NewLeadPipeline(dispatcher, db, storage, email, chat)
	require.NoError(t, p.Submit(context.Background(), pipelineSubmission()))
	p.Wait()

	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, "Ana <b>Silva</b>", dispatcher.calls[0].Answers.Name, "the webhook receives answers untouched")

	var lead models.Lead
	require.NoError(t, db.First(&lead).Error)
	assert.Equal(t, models.LeadStatusDelivered, lead.Status)
	assert.Equal(t, "Ana Silva", lead.Name)
	assert.Equal(t, "ana@example.com", lead.Email)
	assert.Equal(t, "Rebrand & site", lead.Message)
	assert.Equal(t, models.LeadChannelWizard, lead.Channel)
	assert.Equal(t, "sess-1", lead.SessionID)
	assert.Equal(t, "10.0.0.1", lead.IPAddress)
	assert.Equal(t, "leads/2026/10/"+lead.ID+".json", lead.ArchiveKey)
	assert.True(t, lead.NotifiedEmail)
	assert.False(t, lead.NotifiedChat)

	rc, contentType, err := storage.Open(context.Background(), lead.ArchiveKey)
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "application/json", contentType)
	assert.Contains(t, string(body), `"form": "formulario-identidade-visual"`)

	assert.Equal(t, []string{"Ana Silva"}, email.leads)
}

func TestLeadPipelineFailed(t *testing.T) {
	db := setupTestDB(t)
	notifier := &stubNotifier{channel: NotifyChannelEmail}
	deliveryErr := &leadform.DeliveryError{Endpoint: "primary", StatusCode: 422, Detail: "Invalid phone"}
	p := NewLeadPipeline(&stubDispatcher{err: deliveryErr}, db, nil, notifier)

	sub := pipelineSubmission()
	sub.Metadata.Channel = models.LeadChannelAPI
	err := p.Submit(context.Background(), sub)
	p.Wait()

	assert.ErrorIs(t, err, deliveryErr)

	var lead models.Lead
	require.NoError(t, db.First(&lead).Error)
	assert.Equal(t, models.LeadStatusFailed, lead.Status)
	assert.Equal(t, 422, lead.FailureStatus)
	assert.Equal(t, "Webhook error (422): Invalid phone", lead.FailureDetail)
	assert.Equal(t, models.LeadChannelAPI, lead.Channel)
	assert.Empty(t, notifier.leads)
}

func TestLeadPipelineTimeoutKeepsSentinel(t *testing.T) {
	p := NewLeadPipeline(&stubDispatcher{err: leadform.ErrTimeout}, nil, nil)
	err := p.Submit(context.Background(), pipelineSubmission())
	assert.ErrorIs(t, err, leadform.ErrTimeout)
}

func TestLeadPipelineWithoutDB(t *testing.T) {
	notifier := &stubNotifier{channel: NotifyChannelTelegram}
	p := NewLeadPipeline(&stubDispatcher{}, nil, nil, notifier)
	require.NoError(t, p.Submit(context.Background(), pipelineSubmission()))
	p.Wait()
	assert.Len(t, notifier.leads, 1)
}
