package class

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fbasso/maestro/core"
)

// Class is a cohort of students a module is taught to.
type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name     string `json:"name" validate:"required,min=2"`
	Year     int    `json:"year" validate:"omitempty,min=1"`
	IsActive *bool  `json:"is_active"`
}

func (nc *NewClass) Validate(_ context.Context, validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	if nc.IsActive == nil {
		active := true
		nc.IsActive = &active
	}
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing
// Class. Omitted fields keep their current value.
type UpdateClass struct {
	Name     string `json:"name" validate:"omitempty,min=2"`
	Year     *int   `json:"year" validate:"omitempty"`
	IsActive *bool  `json:"is_active"`
}

func (uc *UpdateClass) Validate(_ context.Context, orig Class, validate *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.Year == nil {
		uc.Year = &orig.Year
	}
	if uc.IsActive == nil {
		uc.IsActive = &orig.IsActive
	}
	return validate.Struct(uc)
}
