package handlers

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"mavenestudio/middleware"
	"mavenestudio/models"
	"mavenestudio/services/i18n"
	"mavenestudio/services/leadform"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// LeadRequest is the body of POST /api/leads. Field names follow the
// intake payload.
type LeadRequest struct {
	Name           string `json:"name" validate:"not_blank,max=200"`
	Email          string `json:"email" validate:"not_blank,lead_email"`
	Phone          string `json:"phone" validate:"not_blank,br_phone"`
	Company        string `json:"company" validate:"max=200"`
	Service        string `json:"service" validate:"not_blank,max=500"`
	Budget         string `json:"budget" validate:"max=100"`
	Timeline       string `json:"timeline" validate:"max=100"`
	Message        string `json:"message" validate:"not_blank,max=5000"`
	Language       string `json:"language" validate:"omitempty,oneof=pt en es"`
	PageURL        string `json:"pageUrl" validate:"omitempty,url"`
	Referrer       string `json:"referrer" validate:"omitempty,max=2000"`
	TurnstileToken string `json:"turnstileToken"`
}

// LeadResponse acknowledges a delivered lead
type LeadResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// LeadErrorResponse describes a rejected or undelivered lead
type LeadErrorResponse struct {
	Error  string            `json:"error"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewLeadValidator builds the validator used by the lead API
func NewLeadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	RegisterLeadValidators(v)
	return v
}

// RegisterLeadValidators registers the wizard's field rules as validator tags
func RegisterLeadValidators(v *validator.Validate) {
	_ = v.RegisterValidation("not_blank", NotBlank)
	_ = v.RegisterValidation("lead_email", LeadEmail)
	_ = v.RegisterValidation("br_phone", BRPhone)
}

// NotBlank rejects empty and whitespace-only strings
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// LeadEmail applies the wizard's email rule
func LeadEmail(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	return leadform.ValidateEmail(val)
}

// BRPhone applies the wizard's phone rule: 10 or 11 digits with area code
func BRPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return leadform.ValidatePhone(val)
}

// validationMessageKeys maps validator tags to translation keys
var validationMessageKeys = map[string]string{
	"not_blank":  "form.errors.required",
	"lead_email": "form.errors.invalidEmail",
	"br_phone":   "form.errors.invalidPhone",
}

// LeadAPIHandler accepts complete leads as JSON from trusted integrations
type LeadAPIHandler struct {
	Submitter leadform.Submitter
	Validate  *validator.Validate
	Captcha   CaptchaVerifier
	Tracker   leadform.ConversionTracker
}

// Create handles POST /api/leads
func (h *LeadAPIHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req LeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}

	lang := req.Language
	if lang == "" {
		lang = middleware.GetLocale(c)
	}
	ctx = i18n.WithLocale(ctx, lang)

	if fields := h.fieldErrors(ctx, req); len(fields) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, LeadErrorResponse{
			Error:  i18n.T(ctx, "form.errors.submitTitle"),
			Fields: fields,
		})
	}

	if h.Captcha != nil {
		ok, err := h.Captcha(ctx, req.TurnstileToken, c.RealIP())
		if err != nil || !ok {
			if err != nil {
				log.Warn().Err(err).Msg("Turnstile verification failed")
			}
			return c.JSON(http.StatusForbidden, LeadErrorResponse{Error: i18n.T(ctx, "form.errors.captcha")})
		}
	}

	sub := leadform.Submission{
		SessionID: uuid.NewString(),
		Answers: leadform.Answers{
			Name:     strings.TrimSpace(req.Name),
			Email:    strings.TrimSpace(req.Email),
			Phone:    leadform.FormatPhone(req.Phone),
			Company:  strings.TrimSpace(req.Company),
			Service:  strings.TrimSpace(req.Service),
			Budget:   strings.TrimSpace(req.Budget),
			Timeline: strings.TrimSpace(req.Timeline),
			Message:  strings.TrimSpace(req.Message),
		},
		Metadata: leadform.Metadata{
			Language:    lang,
			SubmittedAt: time.Now(),
			PageURL:     req.PageURL,
			Referrer:    req.Referrer,
			UserAgent:   c.Request().UserAgent(),
			RemoteIP:    c.RealIP(),
			Channel:     models.LeadChannelAPI,
		},
	}

	err := h.Submitter.Submit(context.WithoutCancel(ctx), sub)
	if err == nil {
		if h.Tracker != nil {
			h.Tracker.TrackConversion(ctx, sub.SessionID, sub.Metadata)
		}
		return c.JSON(http.StatusCreated, LeadResponse{Status: models.LeadStatusDelivered, SessionID: sub.SessionID})
	}

	var de *leadform.DeliveryError
	switch {
	case errors.Is(err, leadform.ErrTimeout):
		return c.JSON(http.StatusGatewayTimeout, LeadErrorResponse{
			Error: i18n.T(ctx, "form.errors.timeout"),
		})
	case errors.As(err, &de) && de.HasDetail():
		return c.JSON(http.StatusBadGateway, LeadErrorResponse{
			Error:  i18n.T(ctx, "form.errors.submitTitle"),
			Detail: de.Error(),
		})
	default:
		return c.JSON(http.StatusBadGateway, LeadErrorResponse{
			Error: i18n.T(ctx, "form.errors.submitFailed"),
		})
	}
}

// fieldErrors returns a localized message per invalid field
func (h *LeadAPIHandler) fieldErrors(ctx context.Context, req LeadRequest) map[string]string {
	v := h.Validate
	if v == nil {
		v = NewLeadValidator()
	}

	err := v.StructCtx(ctx, req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		if key, ok := validationMessageKeys[fe.Tag()]; ok {
			fields[fe.Field()] = i18n.T(ctx, key)
		} else {
			fields[fe.Field()] = fe.Error()
		}
	}
	return fields
}
