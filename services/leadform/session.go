package leadform

import "time"

// Phase is the coarse state of a wizard session.
type Phase string

const (
	PhaseIntro      Phase = "intro"
	PhaseQuestion   Phase = "question"
	PhaseSubmitting Phase = "submitting"
	PhaseSubmitted  Phase = "submitted"
)

// Notice is a transient message for the toast area.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive"`
}

// Session is the Form Session State of one visitor. Step 0 is the intro
// screen, steps 1..N are questions.
type Session struct {
	ID         string           `json:"id"`
	Step       int              `json:"step"`
	Answers    Answers          `json:"answers"`
	Errors     map[Field]string `json:"errors,omitempty"`
	Submitting bool             `json:"submitting"`
	Submitted  bool             `json:"submitted"`
	CreatedAt  time.Time        `json:"created_at"`

	// Where the visitor came from when the wizard was opened.
	PageURL  string `json:"page_url,omitempty"`
	Referrer string `json:"referrer,omitempty"`

	// Notices are rendered once by the request that produced them.
	Notices []Notice `json:"-"`
}

// NewSession starts a fresh session on the intro screen.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Errors:    make(map[Field]string),
		CreatedAt: time.Now(),
	}
}

// Phase derives the state machine position.
func (s *Session) Phase() Phase {
	switch {
	case s.Submitted:
		return PhaseSubmitted
	case s.Submitting:
		return PhaseSubmitting
	case s.Step == 0:
		return PhaseIntro
	default:
		return PhaseQuestion
	}
}

// CurrentStep returns the active question, if any.
func (s *Session) CurrentStep() (Step, bool) {
	return StepAt(s.Step)
}

// Progress is the completed share of questions, 0..100.
func (s *Session) Progress() int {
	if s.Step <= 0 {
		return 0
	}
	return s.Step * 100 / TotalSteps()
}

// ErrorFor returns the current validation message for field.
func (s *Session) ErrorFor(field Field) string {
	if s.Errors == nil {
		return ""
	}
	return s.Errors[field]
}

// Notify queues a notice for the next render.
func (s *Session) Notify(n Notice) {
	s.Notices = append(s.Notices, n)
}

// DrainNotices returns and clears the queued notices.
func (s *Session) DrainNotices() []Notice {
	out := s.Notices
	s.Notices = nil
	return out
}

func (s *Session) setError(field Field, msg string) {
	s.Errors = map[Field]string{field: msg}
}

func (s *Session) clearErrors() {
	s.Errors = make(map[Field]string)
}
