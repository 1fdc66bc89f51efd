package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
)

var (
	// errors
	ErrNotFound      = errors.New("class not found")
	ErrDeleteBlocked = errors.New("could not delete class: modules are still assigned")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		QueryAllClasses(ctx context.Context, ordering ...core.DBOrdering) ([]Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		// GetActiveClass returns the first active class in store order.
		GetActiveClass(ctx context.Context) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewClass) (Class, error)
		QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		GetActive(ctx context.Context) (Class, error)
		Update(ctx context.Context, id string, uc UpdateClass) (Class, error)
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

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		Name:      nc.Name,
		Year:      nc.Year,
		IsActive:  *nc.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) GetActive(ctx context.Context) (Class, error) {
	return svc.repo.GetActiveClass(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls := Class{
		ID:        id,
		Name:      uc.Name,
		Year:      *uc.Year,
		IsActive:  *uc.IsActive,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteClass(ctx, id)
}
