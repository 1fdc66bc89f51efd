package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
)

var (
	// errors
	ErrNotFound      = errors.New("teacher not found")
	ErrEmailExists   = errors.New("a teacher with this email already exists")
	ErrDeleteBlocked = errors.New("could not delete teacher: modules are still assigned")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedTeachers ...Teacher) error
		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		QueryAllTeachers(ctx context.Context, ordering ...core.DBOrdering) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		// DeleteTeacher fails with ErrDeleteBlocked while the teacher still
		// owns modules; it never cascades.
		DeleteTeacher(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedTeachers ...Teacher) error
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Teacher, error)
		GetByID(ctx context.Context, id string) (Teacher, error)
		Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckEmailUniqueness(ctx context.Context, email string, excludedTeachers ...Teacher) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedTeachers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	tch := Teacher{
		Name:       nt.Name,
		Email:      nt.Email,
		Phone:      nt.Phone,
		IsInternal: *nt.IsInternal,
		Color:      nt.Color,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *Service) QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	tch := Teacher{
		ID:         id,
		Name:       ut.Name,
		Email:      ut.Email,
		Phone:      *ut.Phone,
		IsInternal: *ut.IsInternal,
		Color:      ut.Color,
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.repo.UpdateTeacher(ctx, tch)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteTeacher(ctx, id)
}
