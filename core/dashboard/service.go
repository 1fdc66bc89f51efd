package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/module"
)

const defaultUpcomingLimit = 5

type (
	// Stats is the aggregate snapshot shown on the dashboard. It reflects
	// whatever is persisted at read time; concurrent writers are not
	// serialized against it.
	Stats struct {
		TotalHours      int       `json:"total_hours"`
		DeliveredHours  float64   `json:"delivered_hours"`
		LessonsThisWeek int       `json:"lessons_this_week"`
		ActiveModules   int       `json:"active_modules"`
		NextExam        *NextExam `json:"next_exam"`
	}

	NextExam struct {
		Date       time.Time `json:"date"`
		ModuleName string    `json:"module_name"`
	}

	ServiceInterface interface {
		Stats(ctx context.Context, now time.Time) (Stats, error)
		UpcomingLessons(ctx context.Context, now time.Time, limit int) ([]lesson.Detail, error)
		CriticalModules(ctx context.Context) ([]module.WithHours, error)
	}

	Service struct {
		moduleRepo module.Repository
		lessonRepo lesson.Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(moduleRepo module.Repository, lessonRepo lesson.Repository) *Service {
	return &Service{moduleRepo: moduleRepo, lessonRepo: lessonRepo}
}

// Stats aggregates over all modules and lessons: total budgeted hours,
// delivered hours, the lesson count in the Monday-Sunday week containing
// now, the module count and the next upcoming exam (nil when none).
func (svc *Service) Stats(ctx context.Context, now time.Time) (Stats, error) {
	mods, err := svc.moduleRepo.QueryModules(ctx, nil)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying modules")
	}

	var stats Stats
	stats.ActiveModules = len(mods)
	for _, mod := range mods {
		stats.TotalHours += mod.TotalHours
	}

	delivered, err := svc.lessonRepo.SumHoursByModule(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "summing lesson hours")
	}
	for _, h := range delivered {
		stats.DeliveredHours += h
	}

	weekStart, weekEnd := Week(now)
	stats.LessonsThisWeek, err = svc.lessonRepo.CountLessonsBetween(ctx, weekStart, weekEnd)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting week lessons")
	}

	next, err := svc.lessonRepo.GetNextExam(ctx, now)
	switch errors.Cause(err) {
	case nil:
		stats.NextExam = &NextExam{Date: next.Date, ModuleName: next.ModuleName}
	case lesson.ErrNotFound:
		// no exam scheduled
	default:
		return Stats{}, errors.Wrap(err, "finding next exam")
	}

	return stats, nil
}

// UpcomingLessons lists lessons from today's midnight on, ordered by date
// then start time. A non-positive limit falls back to the default of 5.
func (svc *Service) UpcomingLessons(ctx context.Context, now time.Time, limit int) ([]lesson.Detail, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return svc.lessonRepo.QueryUpcomingLessons(ctx, today, limit)
}

// CriticalModules returns the modules flagged critical or very critical,
// with their hour progress attached.
func (svc *Service) CriticalModules(ctx context.Context) ([]module.WithHours, error) {
	mods, err := svc.moduleRepo.QueryModules(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	delivered, err := svc.lessonRepo.SumHoursByModule(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "summing lesson hours")
	}

	critical := make([]module.WithHours, 0)
	for _, mod := range mods {
		mh := module.WithHours{
			Module:         mod,
			DeliveredHours: delivered[mod.ID],
			RemainingHours: float64(mod.TotalHours) - delivered[mod.ID],
		}
		if mh.Criticality() != module.LevelOK {
			critical = append(critical, mh)
		}
	}
	return critical, nil
}

// Week returns the bounds of the Monday-Sunday week containing t's
// calendar date, as UTC day values matching how lesson dates are stored.
// The weekday is taken in t's location, so a Monday-morning instant in
// Europe/Rome still anchors the week at that Monday.
func Week(t time.Time) (start, end time.Time) {
	weekday := int(t.Weekday())
	if weekday == 0 { // time.Sunday
		weekday = 7
	}
	y, m, d := t.Date()
	start = time.Date(y, m, d-(weekday-1), 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 0, 6)
	return start, end
}
