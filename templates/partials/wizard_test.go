package partials

import (
	"bytes"
	"context"
	"testing"

	"mavenestudio/services/i18n"
	"mavenestudio/services/leadform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, lang string, v WizardView) string {
	t.Helper()
	require.NoError(t, i18n.Load())
	var buf bytes.Buffer
	ctx := i18n.WithLocale(context.Background(), lang)
	require.NoError(t, Wizard(v).Render(ctx, &buf))
	return buf.String()
}

func TestWizardIntro(t *testing.T) {
	html := render(t, "pt", WizardView{Session: leadform.NewSession("s1")})
	assert.Contains(t, html, `data-phase="intro"`)
	assert.Contains(t, html, "Vamos tirar sua ideia do papel")
	assert.Contains(t, html, "Começar")
}

func TestWizardQuestion(t *testing.T) {
	s := leadform.NewSession("s1")
	s.Step = 3
	s.Answers.Phone = "(11) 9"
	s.Errors = map[leadform.Field]string{leadform.FieldPhone: "Enter a valid phone number with area code"}

	html := render(t, "en", WizardView{Session: s})
	assert.Contains(t, html, "Question 3 of 8")
	assert.Contains(t, html, `type="tel"`)
	assert.Contains(t, html, `value="(11) 9"`)
	assert.Contains(t, html, `aria-invalid="true"`)
	assert.Contains(t, html, `class="field-error"`)
	assert.NotContains(t, html, "cf-turnstile")
	assert.NotContains(t, html, "Optional")
}

func TestWizardOptionalSelect(t *testing.T) {
	s := leadform.NewSession("s1")
	s.Step = 6
	s.Answers.Budget = leadform.Options("budget", "es")[1]

	html := render(t, "es", WizardView{Session: s})
	assert.Contains(t, html, "<select")
	assert.Contains(t, html, "Opcional")
	assert.Contains(t, html, " selected>")
}

func TestWizardServiceSelection(t *testing.T) {
	s := leadform.NewSession("s1")
	s.Step = 5
	s.Answers.Service = "Identidade Visual"

	html := render(t, "pt", WizardView{Session: s})
	assert.Contains(t, html, `value="Identidade Visual" formaction="/contato/service"`)
	assert.Contains(t, html, `aria-pressed="true"`)
	assert.Contains(t, html, `aria-pressed="false"`)
}

func TestWizardLastStepShowsCaptcha(t *testing.T) {
	s := leadform.NewSession("s1")
	s.Step = leadform.TotalSteps()

	html := render(t, "pt", WizardView{Session: s, TurnstileSiteKey: "site-key"})
	assert.Contains(t, html, `data-sitekey="site-key"`)
	assert.Contains(t, html, "Enviando...")
	assert.Contains(t, html, "<textarea")
}

func TestWizardSuccessFiresLead(t *testing.T) {
	s := leadform.NewSession("s1")
	s.Step = leadform.TotalSteps()
	s.Submitted = true

	html := render(t, "pt", WizardView{Session: s})
	assert.Contains(t, html, "Recebemos sua mensagem!")
	assert.Contains(t, html, "fbq('track','Lead'")
	assert.Contains(t, html, "Formulário de Contato")
}

func TestWizardEscapesAnswers(t *testing.T) {
	s := leadform.NewSession("s1")
	s.Step = 1
	s.Answers.Name = `"><script>alert(1)</script>`

	html := render(t, "pt", WizardView{Session: s})
	assert.NotContains(t, html, "<script>alert(1)")
}
