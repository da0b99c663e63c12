package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps json field names to the labels used in messages
var FieldLabels = map[string]string{
	"avatar_url": "Avatar url",
	"cover_url":  "Cover url",
}

// FieldErrors converts validator.ValidationErrors into a json-field -> message map.
// Any other error is reported under the "_" key.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = err.Error()
		return out
	}

	for _, e := range validationErrors {
		field := e.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = formatSingleError(e)
	}
	return out
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, e.Param())
	case "url_or_path":
		return fmt.Sprintf("%s must be a valid URL.", label)
	case "not_blank":
		return fmt.Sprintf("%s cannot be empty.", label)
	default:
		return fmt.Sprintf("%s is invalid (%s).", label, e.Tag())
	}
}

func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
