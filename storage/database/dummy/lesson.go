package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fbasso/maestro/core/lesson"
)

type lessonRepository struct {
	db       *lessonTable
	modules  *moduleTable
	teachers *teacherTable
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db.lesson, modules: db.module, teachers: db.teacher}
}

// detail resolves the module and teacher display fields of a lesson the way
// the SQL repository's JOIN does. Dangling references yield empty fields.
func (repo *lessonRepository) detail(lsn lesson.Lesson) lesson.Detail {
	det := lesson.Detail{Lesson: lsn}

	repo.modules.RLock()
	mod, ok := repo.modules.table[lsn.ModuleID]
	repo.modules.RUnlock()
	if !ok {
		return det
	}
	det.ModuleName = mod.Name
	det.TeacherID = mod.TeacherID

	repo.teachers.RLock()
	if tch, ok := repo.teachers.table[mod.TeacherID]; ok {
		det.TeacherName = tch.Name
	}
	repo.teachers.RUnlock()
	return det
}

func (repo *lessonRepository) query() []lesson.Lesson {
	lessons := make([]lesson.Lesson, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		lessons = append(lessons, *repo.db.table[id])
	}
	return lessons
}

func sortLessons(lessons []lesson.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		if !lessons[i].Date.Equal(lessons[j].Date) {
			return lessons[i].Date.Before(lessons[j].Date)
		}
		return lessons[i].StartTime < lessons[j].StartTime
	})
}

func (repo *lessonRepository) checkModuleRef(moduleID string) error {
	repo.modules.RLock()
	defer repo.modules.RUnlock()
	if _, ok := repo.modules.table[moduleID]; !ok {
		return lesson.ErrModuleNotFound
	}
	return nil
}

func (repo *lessonRepository) CreateLesson(_ context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	if err := repo.checkModuleRef(lsn.ModuleID); err != nil {
		return lesson.Lesson{}, err
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	lsn.ID = uuid.New().String()
	repo.db.table[lsn.ID] = &lsn
	repo.db.order = append(repo.db.order, lsn.ID)
	return lsn, nil
}

func (repo *lessonRepository) QueryLessons(_ context.Context, filter *lesson.QueryFilter) ([]lesson.Detail, error) {
	repo.db.RLock()
	lessons := repo.query()
	repo.db.RUnlock()

	if filter != nil && !filter.IsEmpty() {
		filter.Clean()
		var filtered []lesson.Lesson
		for _, lsn := range lessons {
			if !filter.From.IsZero() && lsn.Date.Before(lesson.Day(filter.From)) {
				continue
			}
			if !filter.To.IsZero() && lsn.Date.After(lesson.Day(filter.To)) {
				continue
			}
			if filter.TeacherID != "" && repo.detail(lsn).TeacherID != filter.TeacherID {
				continue
			}
			filtered = append(filtered, lsn)
		}
		lessons = filtered
	}
	sortLessons(lessons)

	details := make([]lesson.Detail, 0, len(lessons))
	for _, lsn := range lessons {
		details = append(details, repo.detail(lsn))
	}
	return details, nil
}

func (repo *lessonRepository) GetLessonByID(_ context.Context, id string) (lesson.Detail, error) {
	repo.db.RLock()
	lsn, ok := repo.db.table[id]
	repo.db.RUnlock()

	if !ok {
		return lesson.Detail{}, lesson.ErrNotFound
	}
	return repo.detail(*lsn), nil
}

func (repo *lessonRepository) UpdateLesson(_ context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	if err := repo.checkModuleRef(lsn.ModuleID); err != nil {
		return lesson.Lesson{}, err
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[lsn.ID]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	lsn.CreatedAt = orig.CreatedAt
	repo.db.table[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *lessonRepository) DeleteLesson(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return lesson.ErrNotFound
	}
	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}

func (repo *lessonRepository) SumHoursByModule(_ context.Context, moduleIDs ...string) (map[string]float64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sums := make(map[string]float64)
	for _, lsn := range repo.db.table {
		if len(moduleIDs) > 0 && !containsID(lsn.ModuleID, moduleIDs) {
			continue
		}
		sums[lsn.ModuleID] += lsn.Hours
	}
	return sums, nil
}

func (repo *lessonRepository) CountLessonsBetween(_ context.Context, from, to time.Time) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	fromDay, toDay := lesson.Day(from), lesson.Day(to)
	var count int
	for _, lsn := range repo.db.table {
		if !lsn.Date.Before(fromDay) && !lsn.Date.After(toDay) {
			count++
		}
	}
	return count, nil
}

func (repo *lessonRepository) GetNextExam(_ context.Context, after time.Time) (lesson.Detail, error) {
	repo.db.RLock()
	lessons := repo.query()
	repo.db.RUnlock()

	var next *lesson.Lesson
	for i, lsn := range lessons {
		if !lsn.IsExam || lsn.Date.Before(after) {
			continue
		}
		if next == nil || lsn.Date.Before(next.Date) {
			next = &lessons[i]
		}
	}
	if next == nil {
		return lesson.Detail{}, lesson.ErrNotFound
	}
	return repo.detail(*next), nil
}

func (repo *lessonRepository) QueryUpcomingLessons(_ context.Context, from time.Time, limit int) ([]lesson.Detail, error) {
	repo.db.RLock()
	lessons := repo.query()
	repo.db.RUnlock()

	day := lesson.Day(from)
	var upcoming []lesson.Lesson
	for _, lsn := range lessons {
		if !lsn.Date.Before(day) {
			upcoming = append(upcoming, lsn)
		}
	}
	sortLessons(upcoming)
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}

	details := make([]lesson.Detail, 0, len(upcoming))
	for _, lsn := range upcoming {
		details = append(details, repo.detail(lsn))
	}
	return details, nil
}
