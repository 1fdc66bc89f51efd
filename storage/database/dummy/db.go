package dummydb

import (
	"sync"

	"github.com/fbasso/maestro/core/class"
	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/module"
	"github.com/fbasso/maestro/core/teacher"
	"github.com/fbasso/maestro/core/user"
)

// DB is a process-local store keeping every table in memory. It enforces
// the same referential guards as the SQL schema so services and handlers
// can be exercised against it in tests.
type (
	DB struct {
		user    *userTable
		teacher *teacherTable
		class   *classTable
		module  *moduleTable
		lesson  *lessonTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	teacherTable struct {
		sync.RWMutex
		table map[string]*teacher.Teacher
		order []string // insertion order
	}

	classTable struct {
		sync.RWMutex
		table map[string]*class.Class
		order []string
	}

	moduleTable struct {
		sync.RWMutex
		table map[string]*module.Module
		order []string
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]*lesson.Lesson
		order []string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		teacher: &teacherTable{table: make(map[string]*teacher.Teacher)},
		class:   &classTable{table: make(map[string]*class.Class)},
		module:  &moduleTable{table: make(map[string]*module.Module)},
		lesson:  &lessonTable{table: make(map[string]*lesson.Lesson)},
	}
	return db, nil
}
