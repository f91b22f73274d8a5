package leadform

import "strings"

// serviceSeparator joins the labels of a multi-select service answer.
const serviceSeparator = ", "

// Answers is the Answer Set collected by the wizard.
type Answers struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Service  string `json:"service"`
	Budget   string `json:"budget"`
	Timeline string `json:"timeline"`
	Message  string `json:"message"`
}

// Get returns the value stored for field.
func (a *Answers) Get(field Field) string {
	switch field {
	case FieldName:
		return a.Name
	case FieldEmail:
		return a.Email
	case FieldPhone:
		return a.Phone
	case FieldCompany:
		return a.Company
	case FieldService:
		return a.Service
	case FieldBudget:
		return a.Budget
	case FieldTimeline:
		return a.Timeline
	case FieldMessage:
		return a.Message
	}
	return ""
}

// Set stores value for field. Unknown fields are ignored.
func (a *Answers) Set(field Field, value string) {
	switch field {
	case FieldName:
		a.Name = value
	case FieldEmail:
		a.Email = value
	case FieldPhone:
		a.Phone = value
	case FieldCompany:
		a.Company = value
	case FieldService:
		a.Service = value
	case FieldBudget:
		a.Budget = value
	case FieldTimeline:
		a.Timeline = value
	case FieldMessage:
		a.Message = value
	}
}

// SelectedServices splits the service answer into its labels.
func (a *Answers) SelectedServices() []string {
	if a.Service == "" {
		return nil
	}
	return strings.Split(a.Service, serviceSeparator)
}

// HasService reports whether label is part of the service answer.
func (a *Answers) HasService(label string) bool {
	for _, s := range a.SelectedServices() {
		if s == label {
			return true
		}
	}
	return false
}

// toggleService adds label to the selection, or removes it when present,
// keeping selection order.
func toggleService(current, label string) string {
	var selected []string
	if current != "" {
		selected = strings.Split(current, serviceSeparator)
	}

	next := make([]string, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == label {
			found = true
			continue
		}
		next = append(next, s)
	}
	if !found {
		next = append(next, label)
	}
	return strings.Join(next, serviceSeparator)
}
