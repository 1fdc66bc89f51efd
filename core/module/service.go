package module

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/lesson"
)

var (
	// errors
	ErrNotFound       = errors.New("module not found")
	ErrTeacherMissing = errors.New("teacher not found")
	ErrClassMissing   = errors.New("class not found")
	ErrDeleteBlocked  = errors.New("could not delete module: lessons are still scheduled")
)

type (
	Repository interface {
		CreateModule(ctx context.Context, mod Module) (Module, error)
		QueryModules(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Module, error)
		GetModuleByID(ctx context.Context, id string) (Module, error)
		UpdateModule(ctx context.Context, mod Module) (Module, error)
		// DeleteModule fails with ErrDeleteBlocked while lessons are still
		// scheduled for the module; it never cascades.
		DeleteModule(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nm NewModule) (Module, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Module, error)
		QueryWithHours(ctx context.Context, filter *QueryFilter) ([]WithHours, error)
		GetByID(ctx context.Context, id string) (Module, error)
		Update(ctx context.Context, id string, um UpdateModule) (Module, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo       Repository
		lessonRepo lesson.Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, lessonRepo lesson.Repository) *Service {
	return &Service{repo: repo, lessonRepo: lessonRepo}
}

func (svc *Service) Create(ctx context.Context, nm NewModule) (Module, error) {
	now := time.Now().UTC()
	mod := Module{
		Name:       nm.Name,
		Code:       nm.Code,
		TotalHours: nm.TotalHours,
		TeacherID:  nm.TeacherID,
		ClassID:    nm.ClassID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateModule(ctx, mod)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Module, error) {
	return svc.repo.QueryModules(ctx, filter, ordering...)
}

// QueryWithHours decorates the matching modules with their delivered and
// remaining hours, summed from the stored lesson hours.
func (svc *Service) QueryWithHours(ctx context.Context, filter *QueryFilter) ([]WithHours, error) {
	mods, err := svc.repo.QueryModules(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(mods) == 0 {
		return []WithHours{}, nil
	}

	ids := make([]string, 0, len(mods))
	for _, mod := range mods {
		ids = append(ids, mod.ID)
	}
	delivered, err := svc.lessonRepo.SumHoursByModule(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "summing lesson hours")
	}

	res := make([]WithHours, 0, len(mods))
	for _, mod := range mods {
		res = append(res, WithHours{
			Module:         mod,
			DeliveredHours: delivered[mod.ID],
			RemainingHours: float64(mod.TotalHours) - delivered[mod.ID],
		})
	}
	return res, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Module, error) {
	return svc.repo.GetModuleByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateModule) (Module, error) {
	mod := Module{
		ID:         id,
		Name:       um.Name,
		Code:       *um.Code,
		TotalHours: um.TotalHours,
		TeacherID:  um.TeacherID,
		ClassID:    um.ClassID,
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.repo.UpdateModule(ctx, mod)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteModule(ctx, id)
}
