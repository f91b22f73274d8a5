package leadform

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field names a value in the Answer Set.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldCompany  Field = "company"
	FieldService  Field = "service"
	FieldBudget   Field = "budget"
	FieldTimeline Field = "timeline"
	FieldMessage  Field = "message"
)

// InputKind decides how a step is rendered and validated.
type InputKind string

const (
	KindText             InputKind = "text"
	KindEmail            InputKind = "email"
	KindPhone            InputKind = "tel"
	KindSelect           InputKind = "select"
	KindServiceSelection InputKind = "service-selection"
	KindTextarea         InputKind = "textarea"
)

// Step is one question of the wizard. Steps are numbered from 1; step 0 is
// the introduction screen.
type Step struct {
	ID             int
	Field          Field
	Required       bool
	Kind           InputKind
	QuestionKey    string
	PlaceholderKey string
	OptionsKey     string
}

var steps = []Step{
	{ID: 1, Field: FieldName, Required: true, Kind: KindText, QuestionKey: "form.steps.name", PlaceholderKey: "form.placeholders.name"},
	{ID: 2, Field: FieldEmail, Required: true, Kind: KindEmail, QuestionKey: "form.steps.email", PlaceholderKey: "form.placeholders.email"},
	{ID: 3, Field: FieldPhone, Required: true, Kind: KindPhone, QuestionKey: "form.steps.phone", PlaceholderKey: "form.placeholders.phone"},
	{ID: 4, Field: FieldCompany, Required: false, Kind: KindText, QuestionKey: "form.steps.company", PlaceholderKey: "form.placeholders.company"},
	{ID: 5, Field: FieldService, Required: true, Kind: KindServiceSelection, QuestionKey: "form.steps.service", OptionsKey: "service"},
	{ID: 6, Field: FieldBudget, Required: false, Kind: KindSelect, QuestionKey: "form.steps.budget", OptionsKey: "budget"},
	{ID: 7, Field: FieldTimeline, Required: false, Kind: KindSelect, QuestionKey: "form.steps.timeline", OptionsKey: "timeline"},
	{ID: 8, Field: FieldMessage, Required: true, Kind: KindTextarea, QuestionKey: "form.steps.message", PlaceholderKey: "form.placeholders.message"},
}

// Steps returns a copy of the ordered step catalog.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// TotalSteps is N, the number of question steps.
func TotalSteps() int {
	return len(steps)
}

// StepAt returns the question at position i (1-based).
func StepAt(i int) (Step, bool) {
	if i < 1 || i > len(steps) {
		return Step{}, false
	}
	return steps[i-1], true
}

// ServiceOption is a selectable agency service on the service step.
type ServiceOption struct {
	ID          string            `yaml:"id"`
	Icon        string            `yaml:"icon"`
	Label       map[string]string `yaml:"label"`
	Description map[string]string `yaml:"description"`
}

// LabelFor returns the label in lang, falling back to Portuguese.
func (s ServiceOption) LabelFor(lang string) string {
	if v, ok := s.Label[lang]; ok && v != "" {
		return v
	}
	return s.Label["pt"]
}

// DescriptionFor returns the description in lang, falling back to Portuguese.
func (s ServiceOption) DescriptionFor(lang string) string {
	if v, ok := s.Description[lang]; ok && v != "" {
		return v
	}
	return s.Description["pt"]
}

type optionCatalog struct {
	Services  []ServiceOption     `yaml:"services"`
	Budgets   map[string][]string `yaml:"budgets"`
	Timelines map[string][]string `yaml:"timelines"`
}

//go:embed options.yaml
var optionsYAML []byte

var options = mustLoadOptions(optionsYAML)

func mustLoadOptions(data []byte) optionCatalog {
	cat, err := parseOptions(data)
	if err != nil {
		panic(err)
	}
	return cat
}

func parseOptions(data []byte) (optionCatalog, error) {
	var cat optionCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return cat, fmt.Errorf("failed to parse form options: %w", err)
	}
	if len(cat.Services) == 0 {
		return cat, fmt.Errorf("form options: no services defined")
	}
	for _, lang := range []string{"pt", "en", "es"} {
		if len(cat.Budgets[lang]) == 0 || len(cat.Timelines[lang]) == 0 {
			return cat, fmt.Errorf("form options: missing budget or timeline options for %q", lang)
		}
	}
	return cat, nil
}

// Services lists the selectable services in display order.
func Services() []ServiceOption {
	out := make([]ServiceOption, len(options.Services))
	copy(out, options.Services)
	return out
}

// Options returns the choices for a select step in the given language.
func Options(optionsKey, lang string) []string {
	var byLang map[string][]string
	switch optionsKey {
	case "budget":
		byLang = options.Budgets
	case "timeline":
		byLang = options.Timelines
	default:
		return nil
	}
	if opts, ok := byLang[lang]; ok {
		return opts
	}
	return byLang["pt"]
}
