package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mavenestudio/models"
	"mavenestudio/services/leadform"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validLeadJSON = `{
	"name": "Ana Souza",
	"email": "ana@example.com",
	"phone": "11912345678",
	"service": "Identidade Visual",
	"message": "Quero uma marca nova",
	"language": "en",
	"pageUrl": "https://partner.example.com/form",
	"turnstileToken": "good"
}`

func apiContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	_, c, rec := setupEcho(http.MethodPost, "/api/leads", strings.NewReader(body))
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return c, rec
}

func decodeLeadError(t *testing.T, rec *httptest.ResponseRecorder) LeadErrorResponse {
	t.Helper()
	var resp LeadErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLeadAPICreate(t *testing.T) {
	sub := &fakeSubmitter{}
	h := &LeadAPIHandler{Submitter: sub, Validate: NewLeadValidator()}

	c, rec := apiContext(validLeadJSON)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.LeadStatusDelivered, resp.Status)
	assert.NotEmpty(t, resp.SessionID)

	subs := sub.submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "(11) 91234-5678", subs[0].Answers.Phone)
	assert.Equal(t, "en", subs[0].Metadata.Language)
	assert.Equal(t, models.LeadChannelAPI, subs[0].Metadata.Channel)
	assert.Equal(t, resp.SessionID, subs[0].SessionID)
}

func TestLeadAPITracksConversion(t *testing.T) {
	tracker := &fakeTracker{}
	h := &LeadAPIHandler{Submitter: &fakeSubmitter{}, Validate: NewLeadValidator(), Tracker: tracker}

	c, rec := apiContext(validLeadJSON)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{resp.SessionID}, tracker.tracked())
	assert.Equal(t, "https://partner.example.com/form", tracker.meta[0].PageURL)
	assert.Equal(t, models.LeadChannelAPI, tracker.meta[0].Channel)

	failed := &LeadAPIHandler{
		Submitter: &fakeSubmitter{err: &leadform.DeliveryError{StatusCode: 500}},
		Tracker:   tracker,
	}
	c, rec = apiContext(validLeadJSON)
	require.NoError(t, failed.Create(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Len(t, tracker.tracked(), 1)
}

func TestLeadAPIValidation(t *testing.T) {
	sub := &fakeSubmitter{}
	h := &LeadAPIHandler{Submitter: sub, Validate: NewLeadValidator()}

	c, rec := apiContext(`{"name": "  ", "email": "nope", "phone": "123", "message": "x", "language": "es"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeLeadError(t, rec)
	assert.Equal(t, "Este campo es obligatorio", resp.Fields["name"])
	assert.Equal(t, "Ingresa un correo válido", resp.Fields["email"])
	assert.Equal(t, "Ingresa un teléfono válido con código de área", resp.Fields["phone"])
	assert.Equal(t, "Este campo es obligatorio", resp.Fields["service"])
	assert.NotContains(t, resp.Fields, "message")
	assert.Empty(t, sub.submissions())
}

func TestLeadAPIBadJSON(t *testing.T) {
	h := &LeadAPIHandler{Submitter: &fakeSubmitter{}}
	c, _ := apiContext(`{"name":`)

	err := h.Create(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLeadAPICaptcha(t *testing.T) {
	sub := &fakeSubmitter{}
	h := &LeadAPIHandler{
		Submitter: sub,
		Captcha: func(ctx context.Context, token, ip string) (bool, error) {
			return false, nil
		},
	}

	c, rec := apiContext(validLeadJSON)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Please confirm you are not a robot", decodeLeadError(t, rec).Error)
	assert.Empty(t, sub.submissions())
}

func TestLeadAPIDeliveryFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantDetail string
	}{
		{
			name:       "EndpointRejected",
			err:        &leadform.DeliveryError{StatusCode: 500, Detail: "boom"},
			wantStatus: http.StatusBadGateway,
			wantError:  "Could not submit",
			wantDetail: "Webhook error (500): boom",
		},
		{
			name:       "Timeout",
			err:        &leadform.DeliveryError{Err: leadform.ErrTimeout},
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "The submission took too long. Please try again.",
		},
		{
			name:       "NetworkError",
			err:        &leadform.DeliveryError{Err: context.Canceled},
			wantStatus: http.StatusBadGateway,
			wantError:  "Failed to submit the form.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &LeadAPIHandler{Submitter: &fakeSubmitter{err: tt.err}}
			c, rec := apiContext(validLeadJSON)
			require.NoError(t, h.Create(c))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeLeadError(t, rec)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantDetail, resp.Detail)
		})
	}
}
