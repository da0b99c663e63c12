package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var linkPrefixes = []string{"http://", "https://", "/"}

// New returns a validator that reports json field names and knows the custom tags.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("url_or_path", URLOrPath)
	_ = v.RegisterValidation("not_blank", NotBlank)
}

// URLOrPath accepts absolute http(s) URLs and root-relative paths. Empty is allowed.
func URLOrPath(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	for _, p := range linkPrefixes {
		if strings.HasPrefix(val, p) {
			return true
		}
	}
	return false
}

// NotBlank rejects empty and whitespace-only strings.
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
