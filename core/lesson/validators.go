package lesson

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/fbasso/maestro/core"
)

var (
	timeSpanTag  = "timespan"
	timeSpanText = "end time must be after start time"
)

// InitValidators registers the lesson-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(lessonStructValidation, NewLesson{})
	validate.RegisterStructValidation(lessonStructValidation, UpdateLesson{})
	core.RegisterCustomTranslation(validate, translator, timeSpanTag, timeSpanText)
}

// lessonStructValidation rejects lessons whose start/end times imply a zero
// or negative duration. Over-scheduling a module past its hour budget is
// deliberately not checked here.
func lessonStructValidation(sl validator.StructLevel) {
	var startTime, endTime string
	switch l := sl.Current().Interface().(type) {
	case NewLesson:
		startTime, endTime = l.StartTime, l.EndTime
	case UpdateLesson:
		startTime, endTime = l.StartTime, l.EndTime
	}
	if !core.TimeHHMMRegex.MatchString(startTime) || !core.TimeHHMMRegex.MatchString(endTime) {
		return // field-level tags report these
	}
	if ComputeHours(startTime, endTime) <= 0 {
		sl.ReportError(endTime, "end_time", "EndTime", timeSpanTag, "")
	}
}
