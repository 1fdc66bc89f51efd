package lesson

import (
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/fbasso/maestro/core"
)

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestNewLessonValidate(t *testing.T) {
	validate := newTestValidator(t)
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		nl        NewLesson
		wantField string // empty means valid
	}{
		{
			name: "valid",
			nl:   NewLesson{ModuleID: "m1", Date: date, StartTime: "09:00", EndTime: "13:00"},
		},
		{
			name:      "missing module",
			nl:        NewLesson{Date: date, StartTime: "09:00", EndTime: "13:00"},
			wantField: "module_id",
		},
		{
			name:      "malformed start time",
			nl:        NewLesson{ModuleID: "m1", Date: date, StartTime: "25:00", EndTime: "13:00"},
			wantField: "start_time",
		},
		{
			name:      "malformed minutes",
			nl:        NewLesson{ModuleID: "m1", Date: date, StartTime: "09:65", EndTime: "13:00"},
			wantField: "start_time",
		},
		{
			name:      "end equals start",
			nl:        NewLesson{ModuleID: "m1", Date: date, StartTime: "09:00", EndTime: "09:00"},
			wantField: "end_time",
		},
		{
			name:      "end before start",
			nl:        NewLesson{ModuleID: "m1", Date: date, StartTime: "13:00", EndTime: "09:00"},
			wantField: "end_time",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nl.Validate(nil, validate)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Validate() error = %v, want validator.ValidationErrors", err)
			}
			for _, vErr := range vErrs {
				if vErr.Field() == tt.wantField {
					return
				}
			}
			t.Errorf("Validate() errors %v do not flag field %q", vErrs, tt.wantField)
		})
	}
}
