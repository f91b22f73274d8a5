package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"mavenestudio/config"
	"mavenestudio/models"
	"mavenestudio/services/i18n"
	"mavenestudio/templates/emails"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoEmailBody     = errors.New("email must have either HTMLBody or TextBody")
	ErrResendNotConfig = errors.New("RESEND_API_KEY not configured")
)

// emailTemplates is swapped for an in-memory FS in tests
var emailTemplates fs.FS = emails.FS

// Email is one outgoing message
type Email struct {
	To       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// emailSender is the part of the Resend client the mailer uses
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Mailer delivers Email through Resend, or logs it in test mode.
type Mailer struct {
	from     string
	testMode bool
	sender   emailSender
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	m := &Mailer{
		from:     fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		testMode: cfg.EmailTestMode,
	}
	if m.testMode {
		return m, nil
	}
	if cfg.ResendAPIKey == "" {
		return nil, ErrResendNotConfig
	}
	m.sender = resend.NewClient(cfg.ResendAPIKey).Emails
	return m, nil
}

func (m *Mailer) Send(ctx context.Context, email *Email) error {
	if email.HTMLBody == "" && email.TextBody == "" {
		return ErrNoEmailBody
	}
	if m.testMode {
		log.Info().
			Strs("to", email.To).
			Str("subject", email.Subject).
			Str("text", email.TextBody).
			Msg("Email logged (test mode, not sent)")
		return nil
	}

	sent, err := m.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      email.To,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	log.Info().Str("resend_id", sent.Id).Strs("to", email.To).Msg("Email sent via Resend")
	return nil
}

// renderEmail executes the html and txt templates of name in lang, using the
// unsuffixed pair when the language has none. Text bodies are not escaped.
func renderEmail(name, lang string, data any) (htmlBody, textBody string, err error) {
	open := func(ext string) (string, string, error) {
		for _, file := range []string{name + "_" + lang + ext, name + ext} {
			content, err := fs.ReadFile(emailTemplates, file)
			if err == nil {
				return file, string(content), nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", "", err
			}
		}
		return "", "", fmt.Errorf("email template %s%s: %w", name, ext, fs.ErrNotExist)
	}

	file, src, err := open(".html")
	if err != nil {
		return "", "", err
	}
	var buf bytes.Buffer
	htmlTmpl, err := template.New(file).Parse(src)
	if err == nil {
		err = htmlTmpl.Execute(&buf, data)
	}
	if err != nil {
		return "", "", fmt.Errorf("email template %s: %w", file, err)
	}
	htmlBody = buf.String()

	file, src, err = open(".txt")
	if err != nil {
		return "", "", err
	}
	buf.Reset()
	textTmpl, err := texttemplate.New(file).Parse(src)
	if err == nil {
		err = textTmpl.Execute(&buf, data)
	}
	if err != nil {
		return "", "", fmt.Errorf("email template %s: %w", file, err)
	}
	return htmlBody, buf.String(), nil
}

// NewLeadEmailData feeds the new_lead templates
type NewLeadEmailData struct {
	Lead     *models.Lead
	Services []string
	AdminURL string
}

// BuildNewLeadEmail creates the agency notification for a delivered lead.
// Replies go straight to the visitor.
func BuildNewLeadEmail(toEmail string, lead *models.Lead, appURL string) (*Email, error) {
	data := NewLeadEmailData{
		Lead:     lead,
		Services: splitServices(lead.Service),
		AdminURL: strings.TrimSuffix(appURL, "/") + "/admin/leads/" + lead.ID,
	}
	htmlBody, textBody, err := renderEmail("new_lead", i18n.DefaultLanguage(), data)
	if err != nil {
		return nil, err
	}

	subject := "Novo lead: " + lead.Name
	if lead.Company != "" {
		subject += " (" + lead.Company + ")"
	}
	return &Email{
		To:       []string{toEmail},
		ReplyTo:  lead.Email,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}, nil
}

func splitServices(service string) []string {
	if service == "" {
		return nil
	}
	return strings.Split(service, ", ")
}
