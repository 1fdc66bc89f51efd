package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	timeHHMMTag   = "time_hhmm"
	timeHHMMText  = "must be a valid time in HH:MM (24-hour) format"
	TimeHHMMRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

	hexColorTag  = "hexcolor"
	hexColorText = "must be a valid hex color"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(timeHHMMTag, timeHHMMValidation)
	RegisterCustomTranslation(validate, translator, timeHHMMTag, timeHHMMText)

	RegisterCustomTranslation(validate, translator, hexColorTag, hexColorText, true)
	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// timeHHMMValidation only allows 24-hour wall-clock times like "09:00" or "23:59".
func timeHHMMValidation(fl validator.FieldLevel) bool {
	return TimeHHMMRegex.MatchString(fl.Field().String())
}
