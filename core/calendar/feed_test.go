package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/teacher"
)

func testTeacher() teacher.Teacher {
	return teacher.Teacher{ID: "t1", Name: "Anna Maria Bianchi", Email: "anna@test.it"}
}

func testLessons() []lesson.Detail {
	return []lesson.Detail{
		{
			Lesson: lesson.Lesson{
				ID:        "l1",
				ModuleID:  "m1",
				Date:      time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
				StartTime: "09:00",
				EndTime:   "13:00",
				Hours:     4,
				Room:      "Aula 2",
				Notes:     "portare il laptop",
			},
			ModuleName: "Go Programming",
		},
		{
			Lesson: lesson.Lesson{
				ID:        "l2",
				ModuleID:  "m1",
				Date:      time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
				StartTime: "14:00",
				EndTime:   "16:00",
				Hours:     2,
				IsExam:    true,
			},
			ModuleName: "Go Programming",
		},
	}
}

func TestBuildFeed(t *testing.T) {
	feed, err := BuildFeed(testTeacher(), testLessons())
	if err != nil {
		t.Fatalf("BuildFeed() failed: %v", err)
	}

	if feed.Filename != "Anna_Maria_Bianchi_calendar.ics" {
		t.Errorf("Filename = %q, want %q", feed.Filename, "Anna_Maria_Bianchi_calendar.ics")
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"END:VCALENDAR",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:Calendario Anna Maria Bianchi - ITS",
		"X-WR-TIMEZONE:Europe/Rome",
		"UID:l1@maestro",
		"UID:l2@maestro",
		"SUMMARY:Go Programming (ESAME)",
		"LOCATION:Aula 2",
		"DESCRIPTION:portare il laptop",
	} {
		if !strings.Contains(feed.Content, want) {
			t.Errorf("feed content missing %q", want)
		}
	}

	if got := strings.Count(feed.Content, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("event count = %d, want 2", got)
	}
	// only the exam carries the marker
	if got := strings.Count(feed.Content, "(ESAME)"); got != 1 {
		t.Errorf("exam marker count = %d, want 1", got)
	}
}

func TestBuildFeedDeterministic(t *testing.T) {
	feed1, err := BuildFeed(testTeacher(), testLessons())
	if err != nil {
		t.Fatalf("BuildFeed() failed: %v", err)
	}
	feed2, err := BuildFeed(testTeacher(), testLessons())
	if err != nil {
		t.Fatalf("BuildFeed() failed: %v", err)
	}

	// DTSTAMP changes between runs; the event set must not
	strip := func(s string) string {
		var lines []string
		for _, line := range strings.Split(s, "\r\n") {
			if strings.HasPrefix(line, "DTSTAMP") {
				continue
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\r\n")
	}
	if strip(feed1.Content) != strip(feed2.Content) {
		t.Error("feeds generated from the same data differ")
	}
}

func TestBuildFeedMalformedTime(t *testing.T) {
	lessons := testLessons()
	lessons[0].StartTime = "9h00"
	if _, err := BuildFeed(testTeacher(), lessons); err == nil {
		t.Error("BuildFeed() expected error for malformed lesson time")
	}
}

func TestEventTimes(t *testing.T) {
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}

	lsn := lesson.Lesson{
		Date:      time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "13:00",
	}
	start, end, err := EventTimes(lsn, loc)
	if err != nil {
		t.Fatalf("EventTimes() failed: %v", err)
	}

	wantStart := time.Date(2024, 3, 11, 9, 0, 0, 0, loc)
	wantEnd := time.Date(2024, 3, 11, 13, 0, 0, 0, loc)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}

	// a 09:00-13:00 Rome lesson is 08:00-12:00 UTC in winter time
	if got := start.UTC().Hour(); got != 8 {
		t.Errorf("start UTC hour = %d, want 8", got)
	}
}

func TestFeedPath(t *testing.T) {
	if got := FeedPath("t1"); got != "/api/calendar/ical/t1" {
		t.Errorf("FeedPath() = %q, want %q", got, "/api/calendar/ical/t1")
	}
}
