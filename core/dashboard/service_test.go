package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/fbasso/maestro/core/class"
	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/module"
	"github.com/fbasso/maestro/core/teacher"
	dummydb "github.com/fbasso/maestro/storage/database/dummy"
	testutil "github.com/fbasso/maestro/tests"
)

type fixtures struct {
	svc        *Service
	moduleRepo module.Repository
	lessonRepo lesson.Repository
	tch        teacher.Teacher
	cls        class.Class
}

func setup(t *testing.T) fixtures {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	teacherRepo := dummydb.NewTeacherRepository(db)
	classRepo := dummydb.NewClassRepository(db)
	moduleRepo := dummydb.NewModuleRepository(db)
	lessonRepo := dummydb.NewLessonRepository(db)

	return fixtures{
		svc:        NewService(moduleRepo, lessonRepo),
		moduleRepo: moduleRepo,
		lessonRepo: lessonRepo,
		tch:        testutil.CreateTeacher(t, teacherRepo, "Anna Bianchi", "anna@test.it"),
		cls:        testutil.CreateClass(t, classRepo, "ITS 2024", 1, true),
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	// Tuesday
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	modA := testutil.CreateModule(t, fx.moduleRepo, "Go Programming", 40, fx.tch.ID, fx.cls.ID)
	modB := testutil.CreateModule(t, fx.moduleRepo, "Databases", 20, fx.tch.ID, fx.cls.ID)

	// modA: 10h delivered; one lesson inside the current week
	testutil.CreateLesson(t, fx.lessonRepo, modA.ID, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, modA.ID, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, modA.ID, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "14:00", "16:00", false)
	// modB: 20h delivered + exam next week
	testutil.CreateLesson(t, fx.lessonRepo, modB.ID, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, modB.ID, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), "09:00", "13:00", true)

	stats, err := fx.svc.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	if stats.TotalHours != 60 {
		t.Errorf("TotalHours = %d, want 60", stats.TotalHours)
	}
	if stats.DeliveredHours != 18 {
		t.Errorf("DeliveredHours = %v, want 18", stats.DeliveredHours)
	}
	if stats.ActiveModules != 2 {
		t.Errorf("ActiveModules = %d, want 2", stats.ActiveModules)
	}
	if stats.LessonsThisWeek != 1 {
		t.Errorf("LessonsThisWeek = %d, want 1", stats.LessonsThisWeek)
	}
	if stats.NextExam == nil {
		t.Fatal("NextExam = nil, want the upcoming exam")
	}
	if stats.NextExam.ModuleName != "Databases" {
		t.Errorf("NextExam.ModuleName = %q, want %q", stats.NextExam.ModuleName, "Databases")
	}
	if want := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC); !stats.NextExam.Date.Equal(want) {
		t.Errorf("NextExam.Date = %v, want %v", stats.NextExam.Date, want)
	}
}

func TestStatsNoExam(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	mod := testutil.CreateModule(t, fx.moduleRepo, "Go Programming", 40, fx.tch.ID, fx.cls.ID)
	// past exam does not count
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "09:00", "11:00", true)

	stats, err := fx.svc.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.NextExam != nil {
		t.Errorf("NextExam = %+v, want nil", stats.NextExam)
	}
}

func TestUpcomingLessons(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	mod := testutil.CreateModule(t, fx.moduleRepo, "Go Programming", 40, fx.tch.ID, fx.cls.ID)
	// yesterday: excluded
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)
	// same day ordered by start time, then the following days
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), "14:00", "16:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), "09:00", "11:00", false)
	for d := 13; d <= 18; d++ {
		testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)
	}

	lessons, err := fx.svc.UpcomingLessons(ctx, now, 0)
	if err != nil {
		t.Fatalf("UpcomingLessons() failed: %v", err)
	}

	if len(lessons) != 5 {
		t.Fatalf("len(lessons) = %d, want default limit 5", len(lessons))
	}
	if !lessons[0].Date.Equal(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)) || lessons[0].StartTime != "09:00" {
		t.Errorf("first lesson = %v %s, want today 09:00", lessons[0].Date, lessons[0].StartTime)
	}
	if lessons[1].StartTime != "14:00" {
		t.Errorf("second lesson start = %s, want 14:00", lessons[1].StartTime)
	}
	if lessons[0].ModuleName != "Go Programming" || lessons[0].TeacherName != "Anna Bianchi" {
		t.Errorf("lesson detail = %q/%q, want module and teacher names resolved",
			lessons[0].ModuleName, lessons[0].TeacherName)
	}
}

func TestCriticalModules(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	ok := testutil.CreateModule(t, fx.moduleRepo, "Plenty Left", 40, fx.tch.ID, fx.cls.ID)
	critical := testutil.CreateModule(t, fx.moduleRepo, "Almost Done", 10, fx.tch.ID, fx.cls.ID)
	veryCritical := testutil.CreateModule(t, fx.moduleRepo, "On The Brink", 10, fx.tch.ID, fx.cls.ID)
	exhausted := testutil.CreateModule(t, fx.moduleRepo, "Done", 4, fx.tch.ID, fx.cls.ID)

	// hours left: 36 of 40, 2 of 10, 1 of 10, 0 of 4
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	testutil.CreateLesson(t, fx.lessonRepo, ok.ID, day, "09:00", "13:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, critical.ID, day, "09:00", "17:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, veryCritical.ID, day, "09:00", "18:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, exhausted.ID, day, "09:00", "13:00", false)

	mods, err := fx.svc.CriticalModules(ctx)
	if err != nil {
		t.Fatalf("CriticalModules() failed: %v", err)
	}

	got := make(map[string]module.Criticality, len(mods))
	for _, mod := range mods {
		got[mod.Name] = mod.Criticality()
	}
	want := map[string]module.Criticality{
		"Almost Done":  module.LevelCritical,
		"On The Brink": module.LevelVeryCritical,
	}
	if len(got) != len(want) {
		t.Fatalf("CriticalModules() = %v, want %v", got, want)
	}
	for name, level := range want {
		if got[name] != level {
			t.Errorf("module %q criticality = %v, want %v", name, got[name], level)
		}
	}
}

func TestWeek(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("loading Europe/Rome: %v", err)
	}

	tests := []struct {
		name      string
		in        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid week",
			in:        time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC), // Wednesday
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monday",
			in:        time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "sunday belongs to the ending week",
			in:        time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "crosses month boundary",
			in:        time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC), // Tuesday
			wantStart: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 4, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			// Monday 00:30 in Rome is still Sunday in UTC; the week must
			// anchor at that local Monday, as UTC day values.
			name:      "monday morning in Rome",
			in:        time.Date(2024, 3, 11, 0, 30, 0, 0, rome),
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "sunday night in Rome",
			in:        time.Date(2024, 3, 17, 23, 30, 0, 0, rome),
			wantStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Week(tt.in)
			if !start.Equal(tt.wantStart) {
				t.Errorf("Week() start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("Week() end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestStatsWeekNonUTCZone(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)

	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("loading Europe/Rome: %v", err)
	}
	// Tuesday morning local time
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, rome)

	mod := testutil.CreateModule(t, fx.moduleRepo, "Go Programming", 40, fx.tch.ID, fx.cls.ID)
	// Sunday of the previous week must stay out of the count
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)

	stats, err := fx.svc.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.LessonsThisWeek != 2 {
		t.Errorf("LessonsThisWeek = %d, want 2 (Monday and Sunday of the current week)", stats.LessonsThisWeek)
	}
}

func TestStatsExamEarlierToday(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	// past midnight, today's exam has started or passed
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	mod := testutil.CreateModule(t, fx.moduleRepo, "Go Programming", 40, fx.tch.ID, fx.cls.ID)
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), "09:00", "11:00", true)

	stats, err := fx.svc.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.NextExam != nil {
		t.Errorf("NextExam = %+v, want nil once now is past the exam date", stats.NextExam)
	}

	// a later exam is still found
	testutil.CreateLesson(t, fx.lessonRepo, mod.ID, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), "09:00", "11:00", true)
	stats, err = fx.svc.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.NextExam == nil || !stats.NextExam.Date.Equal(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NextExam = %+v, want tomorrow's exam", stats.NextExam)
	}
}
