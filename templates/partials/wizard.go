package partials

import (
	"context"
	"strconv"

	"mavenestudio/middleware"
	"mavenestudio/services"
	"mavenestudio/services/i18n"
	"mavenestudio/services/leadform"
	"mavenestudio/templates/components"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// WizardID is the element every wizard fragment replaces
const WizardID = "wizard"

// Wizard routes
const (
	WizardNextPath    = "/contato/next"
	WizardBackPath    = "/contato/back"
	WizardInputPath   = "/contato/input"
	WizardServicePath = "/contato/service"
)

// WizardView is one render of a visitor's wizard
type WizardView struct {
	Session          *leadform.Session
	TurnstileSiteKey string
}

func tr(ctx context.Context, key string) string {
	return components.T(ctx, key)
}

// Wizard renders the intro, the active question or the success screen.
func Wizard(v WizardView) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return WizardNode(ctx, v)
	})
}

// WizardNode is the wizard for pages that compose it
func WizardNode(ctx context.Context, v WizardView) g.Node {
	var body g.Node
	switch v.Session.Phase() {
	case leadform.PhaseSubmitted:
		body = success(ctx)
	case leadform.PhaseIntro:
		body = intro(ctx)
	default:
		body = question(ctx, v)
	}
	return h.Div(h.ID(WizardID), h.Class("wizard"), g.Attr("data-phase", string(v.Session.Phase())), body)
}

// WizardFragment is the htmx response: the wizard plus queued toasts swapped
// out of band.
func WizardFragment(v WizardView, notices []leadform.Notice) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return g.Group{WizardNode(ctx, v), components.ToastRegion(notices, true)}
	})
}

// wizardForm posts to the next step and swaps the whole wizard. Buttons
// override the target with formaction and hx-post.
func wizardForm(ctx context.Context, children ...g.Node) g.Node {
	return g.El("form",
		h.Method("post"),
		h.Action(WizardNextPath),
		g.Attr("hx-post", WizardNextPath),
		g.Attr("hx-target", "#"+WizardID),
		g.Attr("hx-swap", "outerHTML"),
		g.Attr("hx-disabled-elt", "find button"),
		h.Input(h.Type("hidden"), h.Name("_csrf"), h.Value(middleware.CSRFFromContext(ctx))),
		g.Group(children),
	)
}

func intro(ctx context.Context) g.Node {
	return h.Div(h.Class("wizard-intro"),
		h.H1(g.Text(tr(ctx, "form.intro.title"))),
		h.P(g.Text(tr(ctx, "form.intro.subtitle1"))),
		h.P(h.Class("muted"), g.Text(tr(ctx, "form.intro.subtitle2"))),
		wizardForm(ctx,
			h.Button(h.Type("submit"), h.Class("btn btn-primary"), g.Attr("autofocus"),
				g.Text(tr(ctx, "form.buttons.start"))),
		),
	)
}

func question(ctx context.Context, v WizardView) g.Node {
	s := v.Session
	step, ok := s.CurrentStep()
	if !ok {
		return nil
	}
	last := step.ID == leadform.TotalSteps()
	progress := s.Progress()
	counter := components.T(ctx, "form.progress", map[string]interface{}{
		"current": step.ID,
		"total":   leadform.TotalSteps(),
	})

	return g.Group{
		h.Div(h.Class("wizard-progress"),
			h.Span(g.Text(counter)),
			h.Div(h.Class("progress-track"),
				h.Div(h.Class("progress-bar"),
					g.Attr("style", progressStyle(progress)),
					g.Attr("aria-valuenow", strconv.Itoa(progress)),
					h.Role("progressbar"),
					g.Attr("aria-valuemin", "0"),
					g.Attr("aria-valuemax", "100"),
				),
			),
		),
		wizardForm(ctx,
			g.El("label", h.Class("wizard-question"), g.Attr("for", "wizard-value"),
				g.Text(tr(ctx, step.QuestionKey)),
				g.If(!step.Required, g.Group{
					g.Text(" "),
					h.Span(h.Class("optional"), g.Text(tr(ctx, "form.optional"))),
				}),
			),
			field(ctx, step, s),
			fieldError(s.ErrorFor(step.Field)),
			g.If(last && v.TurnstileSiteKey != "",
				h.Div(h.Class("cf-turnstile"),
					g.Attr("data-sitekey", v.TurnstileSiteKey),
					g.Attr("data-language", i18n.GetLocale(ctx)),
				),
			),
			h.Div(h.Class("wizard-actions"),
				h.Button(h.Type("submit"), h.Class("btn btn-ghost"),
					g.Attr("formaction", WizardBackPath),
					g.Attr("hx-post", WizardBackPath),
					g.Text(tr(ctx, "form.buttons.previous")),
				),
				h.Button(h.Type("submit"), h.Class("btn btn-primary"), submitLabel(ctx, last)),
			),
			h.P(h.Class("enter-hint"), g.Text(tr(ctx, "form.enterHint"))),
		),
	}
}

// submitLabel swaps to the sending label while the final request is in flight
func submitLabel(ctx context.Context, last bool) g.Node {
	if !last {
		return g.Text(tr(ctx, "form.buttons.continue"))
	}
	return g.Group{
		h.Span(h.Class("idle"), g.Text(tr(ctx, "form.buttons.send"))),
		h.Span(h.Class("htmx-indicator"), g.Text(tr(ctx, "form.buttons.sending"))),
	}
}

func fieldError(msg string) g.Node {
	if msg == "" {
		return nil
	}
	return h.P(h.Class("field-error"), g.Text(msg))
}

// field renders the input for the active step. Text inputs report edits
// back so the server can mask the phone and clear stale errors.
func field(ctx context.Context, step leadform.Step, s *leadform.Session) g.Node {
	lang := i18n.GetLocale(ctx)
	value := s.Answers.Get(step.Field)
	invalid := s.ErrorFor(step.Field) != ""

	switch step.Kind {
	case leadform.KindSelect:
		return h.Select(h.ID("wizard-value"), h.Name("value"), g.Attr("autofocus"),
			h.Option(h.Value(""), g.Text(tr(ctx, "form.placeholders.select"))),
			g.Map(leadform.Options(step.OptionsKey, lang), func(opt string) g.Node {
				return h.Option(h.Value(opt), g.If(opt == value, g.Attr("selected")), g.Text(opt))
			}),
		)

	case leadform.KindServiceSelection:
		return g.Group{
			h.Input(h.Type("hidden"), h.ID("wizard-value"), h.Name("value"), h.Value(value)),
			h.Div(h.Class("service-options"), h.Role("group"),
				g.Map(leadform.Services(), func(opt leadform.ServiceOption) g.Node {
					return serviceButton(opt, lang, s.Answers.HasService(opt.LabelFor(lang)))
				}),
			),
		}

	case leadform.KindTextarea:
		return h.Textarea(h.ID("wizard-value"), h.Name("value"),
			g.Attr("rows", "5"),
			g.Attr("autofocus"),
			h.Placeholder(tr(ctx, step.PlaceholderKey)),
			g.Attr("aria-invalid", strconv.FormatBool(invalid)),
			g.Text(value),
		)

	default:
		return textInput(ctx, step, value, invalid)
	}
}

// serviceButton toggles one service; the selection is kept server side
func serviceButton(opt leadform.ServiceOption, lang string, selected bool) g.Node {
	label := opt.LabelFor(lang)
	return h.Button(h.Type("submit"), h.Name("service"), h.Class("service-option"),
		h.Value(label),
		g.Attr("formaction", WizardServicePath),
		g.Attr("hx-post", WizardServicePath),
		g.Attr("aria-pressed", strconv.FormatBool(selected)),
		g.Attr("data-icon", opt.Icon),
		h.Strong(g.Text(label)),
		h.Span(g.Text(opt.DescriptionFor(lang))),
	)
}

// TextInput is also the response to an edit of the phone field, where the
// server returns the masked value.
func TextInput(step leadform.Step, value string, invalid bool) templ.Component {
	return components.View(func(ctx context.Context) g.Node {
		return textInput(ctx, step, value, invalid)
	})
}

func textInput(ctx context.Context, step leadform.Step, value string, invalid bool) g.Node {
	swap := g.Group{g.Attr("hx-swap", "none")}
	if step.Kind == leadform.KindPhone {
		swap = g.Group{
			g.Attr("inputmode", "numeric"),
			g.Attr("maxlength", "15"),
			g.Attr("hx-target", "this"),
			g.Attr("hx-swap", "outerHTML"),
		}
	}
	return h.Input(h.ID("wizard-value"), h.Name("value"), g.Attr("autofocus"),
		h.Type(inputType(step.Kind)),
		h.Value(value),
		h.Placeholder(tr(ctx, step.PlaceholderKey)),
		g.Attr("autocomplete", autocomplete(step.Field)),
		g.Attr("aria-invalid", strconv.FormatBool(invalid)),
		g.Attr("hx-post", WizardInputPath),
		g.Attr("hx-trigger", "input changed delay:400ms"),
		swap,
	)
}

func success(ctx context.Context) g.Node {
	return g.Group{
		h.Div(h.Class("wizard-success"),
			h.H1(g.Text(tr(ctx, "form.success.title"))),
			h.P(g.Text(tr(ctx, "form.success.description"))),
			h.A(h.Href("/"), h.Class("btn btn-primary"), g.Text(tr(ctx, "form.buttons.backToHome"))),
		),
		components.LeadConversion(ctx, services.LeadContentName),
	}
}
