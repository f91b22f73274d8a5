package partials

import (
	"strconv"

	"mavenestudio/services/leadform"
)

// inputType maps a step kind to the html input type
func inputType(kind leadform.InputKind) string {
	switch kind {
	case leadform.KindEmail:
		return "email"
	case leadform.KindPhone:
		return "tel"
	default:
		return "text"
	}
}

// autocomplete hints browsers at the contact field being asked for
func autocomplete(field leadform.Field) string {
	switch field {
	case leadform.FieldName:
		return "name"
	case leadform.FieldEmail:
		return "email"
	case leadform.FieldPhone:
		return "tel-national"
	case leadform.FieldCompany:
		return "organization"
	}
	return "off"
}

func progressStyle(percent int) string {
	return "width: " + strconv.Itoa(percent) + "%"
}
