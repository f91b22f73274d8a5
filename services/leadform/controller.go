package leadform

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Translator resolves a dotted translation key for a language.
type Translator func(lang, key string) string

// ConversionTracker records a successful lead for analytics.
type ConversionTracker interface {
	TrackConversion(ctx context.Context, sessionID string, meta Metadata)
}

// Controller drives a Session through the Step Catalog. It holds no
// per-visitor state, so a single Controller serves every session.
type Controller struct {
	Translate Translator
	Submitter Submitter
	Tracker   ConversionTracker
}

// NewController wires a controller. tracker may be nil.
func NewController(translate Translator, submitter Submitter, tracker ConversionTracker) *Controller {
	return &Controller{Translate: translate, Submitter: submitter, Tracker: tracker}
}

// Advance validates the active field and moves forward. From the last
// question it submits the lead. Validation failures leave the step pointer
// untouched and return a *ValidationError; delivery failures return the
// dispatcher error with the session back on the last question.
func (c *Controller) Advance(ctx context.Context, s *Session, meta Metadata) error {
	switch s.Phase() {
	case PhaseSubmitted:
		return ErrAlreadySubmitted
	case PhaseSubmitting:
		return ErrSubmissionInFlight
	case PhaseIntro:
		s.Step = 1
		return nil
	}

	step, ok := s.CurrentStep()
	if !ok {
		return nil
	}

	s.clearErrors()
	if key := validationKey(step, s.Answers.Get(step.Field)); key != "" {
		msg := c.t(meta.Language, key)
		s.setError(step.Field, msg)
		s.Notify(Notice{Title: msg, Description: msg, Destructive: true})
		return &ValidationError{Field: step.Field, Key: key}
	}

	if s.Step < TotalSteps() {
		s.Step++
		return nil
	}
	return c.submit(ctx, s, meta)
}

// Retreat moves one step back. The intro screen is the floor.
func (c *Controller) Retreat(s *Session) {
	if s.Phase() != PhaseQuestion {
		return
	}
	s.Step--
}

// Edit stores value for the active field, masking phone input, and clears
// the field's error.
func (c *Controller) Edit(s *Session, value string) {
	step, ok := s.CurrentStep()
	if !ok || s.Phase() != PhaseQuestion {
		return
	}
	if step.Kind == KindPhone {
		value = FormatPhone(value)
	}
	s.Answers.Set(step.Field, value)
	if s.Errors != nil {
		delete(s.Errors, step.Field)
	}
}

// ToggleService adds or removes a service label on the service step.
func (c *Controller) ToggleService(s *Session, label string) {
	step, ok := s.CurrentStep()
	if !ok || step.Kind != KindServiceSelection || label == "" {
		return
	}
	c.Edit(s, toggleService(s.Answers.Service, label))
}

func (c *Controller) submit(ctx context.Context, s *Session, meta Metadata) error {
	s.Submitting = true
	defer func() { s.Submitting = false }()

	err := c.Submitter.Submit(ctx, Submission{SessionID: s.ID, Answers: s.Answers, Metadata: meta})
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Lead submission failed")
		s.Step = TotalSteps()
		s.Notify(Notice{
			Title:       c.t(meta.Language, "form.errors.submitTitle"),
			Description: c.failureDescription(meta.Language, err),
			Destructive: true,
		})
		return err
	}

	s.Submitted = true
	if c.Tracker != nil {
		c.Tracker.TrackConversion(ctx, s.ID, meta)
	}
	s.Notify(Notice{
		Title:       c.t(meta.Language, "form.success.title"),
		Description: c.t(meta.Language, "form.success.description"),
	})
	return nil
}

func (c *Controller) failureDescription(lang string, err error) string {
	var de *DeliveryError
	if errors.As(err, &de) && de.HasDetail() {
		return de.Error()
	}
	if errors.Is(err, ErrTimeout) {
		return c.t(lang, "form.errors.timeout")
	}
	return c.t(lang, "form.errors.submitFailed")
}

func (c *Controller) t(lang, key string) string {
	if c.Translate == nil {
		return key
	}
	return c.Translate(lang, key)
}

// validationKey returns the translation key of the rule value breaks for
// step, or "" when it passes.
func validationKey(step Step, value string) string {
	if normalize(value) == "" {
		if step.Required {
			return "form.errors.required"
		}
		return ""
	}
	switch step.Kind {
	case KindEmail:
		if !ValidateEmail(value) {
			return "form.errors.invalidEmail"
		}
	case KindPhone:
		if !ValidatePhone(value) {
			return "form.errors.invalidPhone"
		}
	}
	return ""
}

// Validate checks a complete Answer Set against every step, as used by
// callers that receive all answers at once.
func Validate(a Answers) []ValidationError {
	var out []ValidationError
	for _, step := range steps {
		if key := validationKey(step, a.Get(step.Field)); key != "" {
			out = append(out, ValidationError{Field: step.Field, Key: key})
		}
	}
	return out
}
