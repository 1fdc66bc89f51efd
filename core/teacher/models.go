package teacher

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fbasso/maestro/core"
)

// DefaultColor is assigned to teachers created without an explicit display color.
const DefaultColor = "#3b82f6"

// Teacher gives lessons for the modules assigned to them.
type Teacher struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	IsInternal bool      `json:"is_internal"`
	Color      string    `json:"color"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	Name       string `json:"name" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty"`
	IsInternal *bool  `json:"is_internal"`
	Color      string `json:"color" validate:"omitempty,hexcolor"`
}

func (nt *NewTeacher) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = core.CleanString(nt.Phone)
	if nt.IsInternal == nil {
		internal := true
		nt.IsInternal = &internal
	}
	if nt.Color == "" {
		nt.Color = DefaultColor
	}

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nt.Email)
}

// UpdateTeacher defines what information may be provided to modify an
// existing Teacher. Omitted fields keep their current value; the merged
// result is validated as a whole.
type UpdateTeacher struct {
	Name       string  `json:"name" validate:"omitempty,min=2"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	IsInternal *bool   `json:"is_internal"`
	Color      string  `json:"color" validate:"omitempty,hexcolor"`
}

func (ut *UpdateTeacher) Validate(ctx context.Context, orig Teacher, validate *validator.Validate, svc ServiceInterface) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}

	if email := core.CleanString(ut.Email, true /* lower */); email != "" {
		ut.Email = email
	} else {
		ut.Email = orig.Email
	}

	if ut.Phone == nil {
		ut.Phone = &orig.Phone
	}
	if ut.IsInternal == nil {
		ut.IsInternal = &orig.IsInternal
	}
	if ut.Color == "" {
		ut.Color = orig.Color
	}

	if err := validate.Struct(ut); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, ut.Email, orig)
}
