package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/fbasso/maestro/core/class"
	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/module"
	"github.com/fbasso/maestro/core/teacher"
	"github.com/fbasso/maestro/core/user"
)

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string, isActive bool) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTeacher(t *testing.T, repo teacher.Repository, name, email string) teacher.Teacher {
	t.Helper()
	tstamp := time.Now().UTC()
	tch, err := repo.CreateTeacher(context.Background(), teacher.Teacher{
		Name:       name,
		Email:      email,
		IsInternal: true,
		Color:      teacher.DefaultColor,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}

func CreateClass(t *testing.T, repo class.Repository, name string, year int, isActive bool) class.Class {
	t.Helper()
	tstamp := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), class.Class{
		Name:      name,
		Year:      year,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateModule(t *testing.T, repo module.Repository, name string, totalHours int, teacherID, classID string) module.Module {
	t.Helper()
	tstamp := time.Now().UTC()
	mod, err := repo.CreateModule(context.Background(), module.Module{
		Name:       name,
		TotalHours: totalHours,
		TeacherID:  teacherID,
		ClassID:    classID,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}

func CreateLesson(t *testing.T, repo lesson.Repository, moduleID string, date time.Time, startTime, endTime string, isExam bool) lesson.Lesson {
	t.Helper()
	tstamp := time.Now().UTC()
	lsn, err := repo.CreateLesson(context.Background(), lesson.Lesson{
		ModuleID:  moduleID,
		Date:      lesson.Day(date),
		StartTime: startTime,
		EndTime:   endTime,
		Hours:     lesson.ComputeHours(startTime, endTime),
		IsExam:    isExam,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return lsn
}
