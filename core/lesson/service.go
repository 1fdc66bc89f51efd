package lesson

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound       = errors.New("lesson not found")
	ErrModuleNotFound = errors.New("module not found")
)

type (
	Repository interface {
		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		// QueryLessons returns lessons matching filter, ordered by date then
		// start time ascending.
		QueryLessons(ctx context.Context, filter *QueryFilter) ([]Detail, error)
		GetLessonByID(ctx context.Context, id string) (Detail, error)
		UpdateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		DeleteLesson(ctx context.Context, id string) error

		// aggregations; they trust the stored Hours values
		SumHoursByModule(ctx context.Context, moduleIDs ...string) (map[string]float64, error)
		CountLessonsBetween(ctx context.Context, from, to time.Time) (int, error)
		// GetNextExam returns the earliest exam lesson whose date is not
		// before the `after` instant, so an exam dated today is excluded
		// once `after` has passed midnight. Store order breaks date ties.
		// ErrNotFound when none.
		GetNextExam(ctx context.Context, after time.Time) (Detail, error)
		QueryUpcomingLessons(ctx context.Context, from time.Time, limit int) ([]Detail, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nl NewLesson) (Lesson, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Detail, error)
		GetByID(ctx context.Context, id string) (Detail, error)
		Update(ctx context.Context, id string, ul UpdateLesson) (Lesson, error)
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

func (svc *Service) Create(ctx context.Context, nl NewLesson) (Lesson, error) {
	now := time.Now().UTC()
	lsn := Lesson{
		ModuleID:  nl.ModuleID,
		Date:      nl.Date,
		StartTime: nl.StartTime,
		EndTime:   nl.EndTime,
		Hours:     ComputeHours(nl.StartTime, nl.EndTime),
		IsExam:    nl.IsExam,
		Room:      nl.Room,
		Notes:     nl.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateLesson(ctx, lsn)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Detail, error) {
	return svc.repo.QueryLessons(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Detail, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ul UpdateLesson) (Lesson, error) {
	lsn := Lesson{
		ID:        id,
		ModuleID:  ul.ModuleID,
		Date:      *ul.Date,
		StartTime: ul.StartTime,
		EndTime:   ul.EndTime,
		Hours:     ComputeHours(ul.StartTime, ul.EndTime),
		IsExam:    *ul.IsExam,
		Room:      *ul.Room,
		Notes:     *ul.Notes,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateLesson(ctx, lsn)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteLesson(ctx, id)
}
