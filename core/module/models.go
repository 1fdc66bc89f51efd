package module

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fbasso/maestro/core"
)

// Module is a teaching unit with an hour budget, assigned to one teacher
// and one class.
type Module struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code,omitempty"`
	TotalHours int       `json:"total_hours"`
	TeacherID  string    `json:"teacher_id"`
	ClassID    string    `json:"class_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewModule contains information needed to create a new Module.
type NewModule struct {
	Name       string `json:"name" validate:"required,min=2"`
	Code       string `json:"code"`
	TotalHours int    `json:"total_hours" validate:"required,gt=0"`
	TeacherID  string `json:"teacher_id" validate:"required"`
	ClassID    string `json:"class_id" validate:"required"`
}

func (nm *NewModule) Validate(_ context.Context, validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Code = core.CleanString(nm.Code)
	return validate.Struct(nm)
}

// UpdateModule defines what information may be provided to modify an
// existing Module. Omitted fields keep their current value.
type UpdateModule struct {
	Name       string  `json:"name" validate:"omitempty,min=2"`
	Code       *string `json:"code"`
	TotalHours int     `json:"total_hours" validate:"omitempty,gt=0"`
	TeacherID  string  `json:"teacher_id"`
	ClassID    string  `json:"class_id"`
}

func (um *UpdateModule) Validate(_ context.Context, orig Module, validate *validator.Validate) error {
	if name := core.CleanString(um.Name); name != "" {
		um.Name = name
	} else {
		um.Name = orig.Name
	}
	if um.Code == nil {
		um.Code = &orig.Code
	} else {
		code := core.CleanString(*um.Code)
		um.Code = &code
	}
	if um.TotalHours == 0 {
		um.TotalHours = orig.TotalHours
	}
	if um.TeacherID == "" {
		um.TeacherID = orig.TeacherID
	}
	if um.ClassID == "" {
		um.ClassID = orig.ClassID
	}
	return validate.Struct(um)
}

// QueryFilter narrows module queries; zero values mean "no constraint".
type QueryFilter struct {
	ClassID   string `query:"class"`
	TeacherID string `query:"teacher"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClassID == "" && qf.TeacherID == ""
}

func (qf *QueryFilter) Clean() {
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.TeacherID = core.CleanString(qf.TeacherID)
}
