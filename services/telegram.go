package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"mavenestudio/models"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// LeadNotifier announces a delivered lead on some channel
type LeadNotifier interface {
	Channel() string
	NotifyLead(ctx context.Context, lead *models.Lead) error
}

// Notifier channels
const (
	NotifyChannelEmail    = "email"
	NotifyChannelTelegram = "telegram"
)

// TelegramNotifier posts new leads to a Telegram chat
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID string
}

// NewTelegramNotifier creates a send-only bot; it never polls for updates.
func NewTelegramNotifier(token, chatID string, opts ...bot.Option) (*TelegramNotifier, error) {
	if token == "" || chatID == "" {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: b, chatID: chatID}, nil
}

func (t *TelegramNotifier) Channel() string { return NotifyChannelTelegram }

func (t *TelegramNotifier) NotifyLead(ctx context.Context, lead *models.Lead) error {
	return t.Send(ctx, formatLeadMessage(lead))
}

// Send posts an HTML-formatted message to the configured chat
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	disabled := true
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             t.chatID,
		Text:               text,
		ParseMode:          tgmodels.ParseModeHTML,
		LinkPreviewOptions: &tgmodels.LinkPreviewOptions{IsDisabled: &disabled},
	})
	if err != nil {
		return fmt.Errorf("error sending telegram message: %w", err)
	}
	return nil
}

func formatLeadMessage(lead *models.Lead) string {
	var b strings.Builder
	b.WriteString("🚀 <b>Novo lead</b>\n\n")
	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "<b>%s:</b> %s\n", label, html.EscapeString(value))
	}
	line("Nome", lead.Name)
	line("Empresa", lead.Company)
	line("E-mail", lead.Email)
	line("WhatsApp", lead.Phone)
	line("Serviços", lead.Service)
	line("Orçamento", lead.Budget)
	line("Prazo", lead.Timeline)
	line("Idioma", lead.Language)
	if lead.Message != "" {
		fmt.Fprintf(&b, "\n%s", html.EscapeString(lead.Message))
	}
	return b.String()
}

// FormatSecurityAlert renders a security alert for the Telegram chat
func FormatSecurityAlert(a SecurityAlert) string {
	return fmt.Sprintf("🚨 <b>%s</b>\n%s\nIP: <code>%s</code>\n%s",
		html.EscapeString(a.Level), html.EscapeString(a.Reason), html.EscapeString(a.IP), a.Timestamp.Format(time.RFC1123))
}

// EmailNotifier sends the new-lead email through the Mailer
type EmailNotifier struct {
	Mailer interface {
		Send(ctx context.Context, email *Email) error
	}
	To     string
	AppURL string
}

func (e *EmailNotifier) Channel() string { return NotifyChannelEmail }

func (e *EmailNotifier) NotifyLead(ctx context.Context, lead *models.Lead) error {
	email, err := BuildNewLeadEmail(e.To, lead, e.AppURL)
	if err != nil {
		return err
	}
	return e.Mailer.Send(ctx, email)
}
