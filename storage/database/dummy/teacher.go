package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/teacher"
)

type teacherRepository struct {
	db      *teacherTable
	modules *moduleTable
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db.teacher, modules: db.module}
}

func (repo *teacherRepository) CheckEmailUniqueness(_ context.Context, email string, excludedTeachers ...teacher.Teacher) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make([]string, 0, len(excludedTeachers))
	for _, tch := range excludedTeachers {
		excluded = append(excluded, tch.ID)
	}
	for _, tch := range repo.db.table {
		if tch.Email == email && !containsID(tch.ID, excluded) {
			return teacher.ErrEmailExists
		}
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tch.ID = uuid.New().String()
	repo.db.table[tch.ID] = &tch
	repo.db.order = append(repo.db.order, tch.ID)
	return tch, nil
}

func (repo *teacherRepository) QueryAllTeachers(_ context.Context, ordering ...core.DBOrdering) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		teachers = append(teachers, *repo.db.table[id])
	}
	sortTeachers(teachers, ordering)
	return teachers, nil
}

func sortTeachers(teachers []teacher.Teacher, ordering []core.DBOrdering) {
	ord := core.DBOrdering{Field: "name", Ascending: true}
	if len(ordering) > 0 {
		ord = ordering[0]
	}
	sort.SliceStable(teachers, func(i, j int) bool {
		a, b := teachers[i], teachers[j]
		if !ord.Ascending {
			a, b = b, a
		}
		switch ord.Field {
		case "email":
			return a.Email < b.Email
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Name < b.Name
		}
	})
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id string) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tch, ok := repo.db.table[id]; ok {
		return *tch, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[tch.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	tch.CreatedAt = orig.CreatedAt
	repo.db.table[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) DeleteTeacher(_ context.Context, id string) error {
	repo.modules.RLock()
	for _, mod := range repo.modules.table {
		if mod.TeacherID == id {
			repo.modules.RUnlock()
			return teacher.ErrDeleteBlocked
		}
	}
	repo.modules.RUnlock()

	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return teacher.ErrNotFound
	}
	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
