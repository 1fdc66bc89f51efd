package calendar

import (
	"fmt"
	"regexp"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/teacher"
)

// Timezone is the fixed zone calendar events are anchored to; feeds must
// never depend on the server's local zone.
const Timezone = "Europe/Rome"

const examMarker = " (ESAME)"

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Feed is a rendered iCalendar document for one teacher.
type Feed struct {
	Filename string
	Content  string
}

// BuildFeed renders the given lessons as an iCalendar document. Events are
// anchored to the configured Timezone; summary is the module name with an
// exam marker appended for exams. The output derives purely from its
// input, so re-requesting the feed with unchanged data yields the same
// event set.
func BuildFeed(tch teacher.Teacher, lessons []lesson.Detail) (Feed, error) {
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		return Feed{}, errors.Wrapf(err, "loading %s timezone", Timezone)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Maestro//Calendar//IT")
	cal.SetXWRCalName(fmt.Sprintf("Calendario %s - ITS", tch.Name))
	cal.SetXWRTimezone(Timezone)

	for _, lsn := range lessons {
		start, end, err := EventTimes(lsn.Lesson, loc)
		if err != nil {
			return Feed{}, errors.Wrapf(err, "lesson %s", lsn.ID)
		}

		summary := lsn.ModuleName
		if lsn.IsExam {
			summary += examMarker
		}

		event := cal.AddEvent(lsn.ID + "@maestro")
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(summary)
		if lsn.Room != "" {
			event.SetLocation(lsn.Room)
		}
		if lsn.Notes != "" {
			event.SetDescription(lsn.Notes)
		}
	}

	return Feed{
		Filename: FeedFilename(tch),
		Content:  cal.Serialize(),
	}, nil
}

// EventTimes combines a lesson's calendar day with its wall-clock times
// into absolute instants in loc.
func EventTimes(lsn lesson.Lesson, loc *time.Location) (start, end time.Time, err error) {
	y, m, d := lsn.Date.UTC().Date()

	start, err = at(y, m, d, lsn.StartTime, loc)
	if err != nil {
		return start, end, err
	}
	end, err = at(y, m, d, lsn.EndTime, loc)
	return start, end, err
}

func at(y int, m time.Month, d int, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing time %q", hhmm)
	}
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// FeedFilename derives the attachment filename from the teacher's name,
// whitespace replaced by underscores.
func FeedFilename(tch teacher.Teacher) string {
	return whitespaceRegex.ReplaceAllString(tch.Name, "_") + "_calendar.ics"
}

// FeedPath is the public URL path the feed is served at, relative to the
// application base URL.
func FeedPath(teacherID string) string {
	return "/api/calendar/ical/" + teacherID
}
