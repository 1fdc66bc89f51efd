package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/class"
)

type classRepository struct {
	db      *classTable
	modules *moduleTable
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db.class, modules: db.module}
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls.ID = uuid.New().String()
	repo.db.table[cls.ID] = &cls
	repo.db.order = append(repo.db.order, cls.ID)
	return cls, nil
}

func (repo *classRepository) QueryAllClasses(_ context.Context, ordering ...core.DBOrdering) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]class.Class, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		classes = append(classes, *repo.db.table[id])
	}

	ord := core.DBOrdering{Field: "name", Ascending: true}
	if len(ordering) > 0 {
		ord = ordering[0]
	}
	sort.SliceStable(classes, func(i, j int) bool {
		a, b := classes[i], classes[j]
		if !ord.Ascending {
			a, b = b, a
		}
		switch ord.Field {
		case "year":
			return a.Year < b.Year
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Name < b.Name
		}
	})
	return classes, nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.table[id]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) GetActiveClass(_ context.Context) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, id := range repo.db.order {
		if cls := repo.db.table[id]; cls.IsActive {
			return *cls, nil
		}
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[cls.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	cls.CreatedAt = orig.CreatedAt
	repo.db.table[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string) error {
	repo.modules.RLock()
	for _, mod := range repo.modules.table {
		if mod.ClassID == id {
			repo.modules.RUnlock()
			return class.ErrDeleteBlocked
		}
	}
	repo.modules.RUnlock()

	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return class.ErrNotFound
	}
	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}
