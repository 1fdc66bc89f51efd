package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/module"
)

type moduleRepository struct {
	db       *moduleTable
	teachers *teacherTable
	classes  *classTable
	lessons  *lessonTable
}

var _ module.Repository = (*moduleRepository)(nil) // interface compliance check

func NewModuleRepository(db *DB) module.Repository {
	return &moduleRepository{db: db.module, teachers: db.teacher, classes: db.class, lessons: db.lesson}
}

// checkRefs mirrors the SQL foreign keys on teacher_id and class_id.
func (repo *moduleRepository) checkRefs(mod module.Module) error {
	repo.teachers.RLock()
	_, ok := repo.teachers.table[mod.TeacherID]
	repo.teachers.RUnlock()
	if !ok {
		return module.ErrTeacherMissing
	}

	repo.classes.RLock()
	_, ok = repo.classes.table[mod.ClassID]
	repo.classes.RUnlock()
	if !ok {
		return module.ErrClassMissing
	}
	return nil
}

func (repo *moduleRepository) CreateModule(_ context.Context, mod module.Module) (module.Module, error) {
	if err := repo.checkRefs(mod); err != nil {
		return module.Module{}, err
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	mod.ID = uuid.New().String()
	repo.db.table[mod.ID] = &mod
	repo.db.order = append(repo.db.order, mod.ID)
	return mod, nil
}

func (repo *moduleRepository) QueryModules(_ context.Context, filter *module.QueryFilter, ordering ...core.DBOrdering) ([]module.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mods := make([]module.Module, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		mod := *repo.db.table[id]
		if filter != nil {
			filter.Clean()
			if filter.ClassID != "" && mod.ClassID != filter.ClassID {
				continue
			}
			if filter.TeacherID != "" && mod.TeacherID != filter.TeacherID {
				continue
			}
		}
		mods = append(mods, mod)
	}

	ord := core.DBOrdering{Field: "name", Ascending: true}
	if len(ordering) > 0 {
		ord = ordering[0]
	}
	sort.SliceStable(mods, func(i, j int) bool {
		a, b := mods[i], mods[j]
		if !ord.Ascending {
			a, b = b, a
		}
		switch ord.Field {
		case "code":
			return a.Code < b.Code
		case "total_hours":
			return a.TotalHours < b.TotalHours
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Name < b.Name
		}
	})
	return mods, nil
}

func (repo *moduleRepository) GetModuleByID(_ context.Context, id string) (module.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mod, ok := repo.db.table[id]; ok {
		return *mod, nil
	}
	return module.Module{}, module.ErrNotFound
}

func (repo *moduleRepository) UpdateModule(_ context.Context, mod module.Module) (module.Module, error) {
	if err := repo.checkRefs(mod); err != nil {
		return module.Module{}, err
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[mod.ID]
	if !ok {
		return module.Module{}, module.ErrNotFound
	}
	mod.CreatedAt = orig.CreatedAt
	repo.db.table[mod.ID] = &mod
	return mod, nil
}

func (repo *moduleRepository) DeleteModule(_ context.Context, id string) error {
	repo.lessons.RLock()
	for _, lsn := range repo.lessons.table {
		if lsn.ModuleID == id {
			repo.lessons.RUnlock()
			return module.ErrDeleteBlocked
		}
	}
	repo.lessons.RUnlock()

	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return module.ErrNotFound
	}
	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}
