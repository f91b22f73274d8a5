package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mavenestudio/middleware"
	"mavenestudio/models"
	"mavenestudio/services"
	"mavenestudio/services/i18n"
	"mavenestudio/services/leadform"
	"mavenestudio/templates/pages"
	"mavenestudio/templates/partials"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WizardCookieName holds the visitor's wizard session id
const WizardCookieName = "maven_wizard"

// CaptchaVerifier checks a Turnstile token for the visitor's IP
type CaptchaVerifier func(ctx context.Context, token, ip string) (bool, error)

// ContactHandler serves the lead-capture wizard. Each POST loads the
// visitor's session under its lock, applies one controller operation and
// renders the result.
type ContactHandler struct {
	Store      services.WizardStore
	Controller *leadform.Controller
	SessionTTL time.Duration
	// Captcha is required on the final submission when set
	Captcha CaptchaVerifier
}

// Show starts a fresh wizard. Entering the contact page always discards the
// previous session.
func (h *ContactHandler) Show(c echo.Context) error {
	ctx := c.Request().Context()
	if old, err := c.Cookie(WizardCookieName); err == nil && old.Value != "" {
		if err := h.Store.Delete(ctx, old.Value); err != nil {
			log.Warn().Err(err).Msg("Failed to discard previous wizard session")
		}
	}

	s, err := h.start(c)
	if err != nil {
		return err
	}
	return h.respond(c, s, nil)
}

// Next validates the active answer and advances, submitting from the last
// question.
func (h *ContactHandler) Next(c echo.Context) error {
	s, notices, err := h.update(c, func(ctx context.Context, s *leadform.Session) {
		if s.Phase() == leadform.PhaseQuestion {
			h.Controller.Edit(s, c.FormValue("value"))
			if s.Step == leadform.TotalSteps() && activeStepValid(s) && !h.captchaOK(c) {
				msg := i18n.T(ctx, "form.errors.captcha")
				s.Notify(leadform.Notice{Title: msg, Description: msg, Destructive: true})
				return
			}
		}

		// A closed tab must not abort a submission halfway
		err := h.Controller.Advance(context.WithoutCancel(ctx), s, h.metadata(c, s))
		if err != nil && !errors.Is(err, leadform.ErrValidation) {
			log.Debug().Err(err).Str("session_id", s.ID).Msg("Wizard advance failed")
		}
	})
	if err != nil {
		return err
	}
	return h.respond(c, s, notices)
}

// Back keeps the typed value and moves one step back
func (h *ContactHandler) Back(c echo.Context) error {
	s, notices, err := h.update(c, func(ctx context.Context, s *leadform.Session) {
		if _, posted := c.Request().Form["value"]; posted {
			h.Controller.Edit(s, c.FormValue("value"))
		}
		h.Controller.Retreat(s)
	})
	if err != nil {
		return err
	}
	return h.respond(c, s, notices)
}

// Input records an edit of the active field. Phone edits return the masked
// input; other edits need no response body.
func (h *ContactHandler) Input(c echo.Context) error {
	s, _, err := h.update(c, func(ctx context.Context, s *leadform.Session) {
		h.Controller.Edit(s, c.FormValue("value"))
	})
	if err != nil {
		return err
	}

	step, ok := s.CurrentStep()
	if !ok || step.Kind != leadform.KindPhone || s.Phase() != leadform.PhaseQuestion {
		return c.NoContent(http.StatusNoContent)
	}
	return render(c, http.StatusOK, partials.TextInput(step, s.Answers.Phone, false))
}

// ToggleService adds or removes one service on the service step
func (h *ContactHandler) ToggleService(c echo.Context) error {
	s, notices, err := h.update(c, func(ctx context.Context, s *leadform.Session) {
		h.Controller.ToggleService(s, c.FormValue("service"))
	})
	if err != nil {
		return err
	}
	return h.respond(c, s, notices)
}

// update runs fn on the visitor's session under its lock and saves it. A
// missing or expired session is replaced by a fresh one and fn is skipped.
func (h *ContactHandler) update(c echo.Context, fn func(context.Context, *leadform.Session)) (*leadform.Session, []leadform.Notice, error) {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(WizardCookieName)
	if err != nil || cookie.Value == "" {
		s, err := h.start(c)
		return s, nil, err
	}

	release, err := h.Store.Acquire(ctx, cookie.Value)
	if errors.Is(err, services.ErrWizardBusy) {
		return nil, nil, echo.NewHTTPError(http.StatusConflict, i18n.T(ctx, "form.buttons.sending"))
	}
	if err != nil {
		return nil, nil, err
	}
	defer release()

	s, err := h.Store.Get(ctx, cookie.Value)
	if errors.Is(err, services.ErrWizardNotFound) {
		s, err := h.start(c)
		return s, nil, err
	}
	if err != nil {
		return nil, nil, err
	}

	fn(ctx, s)
	notices := s.DrainNotices()

	if err := h.Store.Save(context.WithoutCancel(ctx), s); err != nil {
		return nil, nil, err
	}
	return s, notices, nil
}

// start creates, stores and hands out a new session
func (h *ContactHandler) start(c echo.Context) (*leadform.Session, error) {
	s := leadform.NewSession(uuid.NewString())
	s.PageURL = getConfig(c).AppURL + c.Request().URL.RequestURI()
	if c.Request().Method != http.MethodGet {
		s.PageURL = getConfig(c).AppURL + "/contato"
	}
	s.Referrer = c.Request().Referer()

	if err := h.Store.Save(c.Request().Context(), s); err != nil {
		return nil, err
	}

	c.SetCookie(&http.Cookie{
		Name:     WizardCookieName,
		Value:    s.ID,
		Path:     "/contato",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   getConfig(c).IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

func (h *ContactHandler) metadata(c echo.Context, s *leadform.Session) leadform.Metadata {
	pageURL := s.PageURL
	if pageURL == "" {
		pageURL = getConfig(c).AppURL + "/contato"
	}
	return leadform.Metadata{
		Language:    middleware.GetLocale(c),
		SubmittedAt: time.Now(),
		PageURL:     pageURL,
		Referrer:    s.Referrer,
		UserAgent:   c.Request().UserAgent(),
		RemoteIP:    c.RealIP(),
		Channel:     models.LeadChannelWizard,
	}
}

func (h *ContactHandler) captchaOK(c echo.Context) bool {
	if h.Captcha == nil {
		return true
	}
	ok, err := h.Captcha(c.Request().Context(), c.FormValue("cf-turnstile-response"), c.RealIP())
	if err != nil {
		log.Warn().Err(err).Msg("Turnstile verification failed")
		return false
	}
	return ok
}

func (h *ContactHandler) respond(c echo.Context, s *leadform.Session, notices []leadform.Notice) error {
	view := partials.WizardView{Session: s}
	if h.Captcha != nil {
		view.TurnstileSiteKey = getConfig(c).TurnstileSiteKey
	}

	if isHTMX(c) {
		return render(c, http.StatusOK, partials.WizardFragment(view, notices))
	}

	page := newPage(c, GetSEO(c, "contact"))
	page.Minimal = true
	page.Notices = notices
	page.TurnstileSiteKey = view.TurnstileSiteKey
	return renderPage(c, http.StatusOK, page, pages.Contact(view))
}

// activeStepValid reports whether the active answer passes its step rules
func activeStepValid(s *leadform.Session) bool {
	step, ok := s.CurrentStep()
	if !ok {
		return false
	}
	for _, e := range leadform.Validate(s.Answers) {
		if e.Field == step.Field {
			return false
		}
	}
	return true
}
