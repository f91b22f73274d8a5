package leadform

import "time"

const (
	PayloadSource = "mavenestudio"
	PayloadForm   = "formulario-identidade-visual"
)

// Metadata describes where and how a lead was submitted.
type Metadata struct {
	Language    string
	SubmittedAt time.Time
	PageURL     string
	Referrer    string
	UserAgent   string

	// Recorded locally, never posted to the intake endpoints.
	RemoteIP string
	Channel  string
}

// Submission is the completed Answer Set plus its context.
type Submission struct {
	SessionID string
	Answers   Answers
	Metadata  Metadata
}

// Payload is the JSON body posted to every intake endpoint.
type Payload struct {
	Source string `json:"source"`
	Form   string `json:"form"`
	Answers
	Language    string  `json:"language"`
	SubmittedAt string  `json:"submittedAt"`
	PageURL     string  `json:"pageUrl"`
	Referrer    *string `json:"referrer"`
	UserAgent   string  `json:"userAgent"`
}

// NewPayload builds the wire body for sub. An empty referrer is sent as null.
func NewPayload(sub Submission) Payload {
	submittedAt := sub.Metadata.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	p := Payload{
		Source:      PayloadSource,
		Form:        PayloadForm,
		Answers:     sub.Answers,
		Language:    sub.Metadata.Language,
		SubmittedAt: submittedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		PageURL:     sub.Metadata.PageURL,
		UserAgent:   sub.Metadata.UserAgent,
	}
	if sub.Metadata.Referrer != "" {
		ref := sub.Metadata.Referrer
		p.Referrer = &ref
	}
	return p
}
