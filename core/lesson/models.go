package lesson

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fbasso/maestro/core"
)

// Lesson is a single scheduled occurrence of a module on a calendar day.
// Hours is derived from StartTime/EndTime at every write; aggregations
// trust the stored value.
type Lesson struct {
	ID        string    `json:"id"`
	ModuleID  string    `json:"module_id"`
	Date      time.Time `json:"date"` // calendar day, midnight UTC
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Hours     float64   `json:"hours"`
	IsExam    bool      `json:"is_exam"`
	Room      string    `json:"room,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Detail pairs a Lesson with display fields of its module and teacher.
type Detail struct {
	Lesson
	ModuleName  string `json:"module_name"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
}

// ComputeHours returns the duration in hours between two wall-clock times
// in "HH:MM" format. Malformed input yields 0.
func ComputeHours(startTime, endTime string) float64 {
	start, okStart := parseMinutes(startTime)
	end, okEnd := parseMinutes(endTime)
	if !okStart || !okEnd {
		return 0
	}
	return float64(end-start) / 60
}

func parseMinutes(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return 0, false
	}
	return h*60 + m, true
}

// NewLesson contains information needed to schedule a new Lesson.
type NewLesson struct {
	ModuleID  string    `json:"module_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time" validate:"required,time_hhmm"`
	EndTime   string    `json:"end_time" validate:"required,time_hhmm"`
	IsExam    bool      `json:"is_exam"`
	Room      string    `json:"room"`
	Notes     string    `json:"notes"`
}

func (nl *NewLesson) Validate(_ context.Context, validate *validator.Validate) error {
	nl.Room = core.CleanString(nl.Room)
	nl.Notes = core.CleanString(nl.Notes)
	nl.Date = Day(nl.Date)
	return validate.Struct(nl)
}

// UpdateLesson defines what information may be provided to modify an
// existing Lesson. Omitted fields keep their current value; the merged
// result is validated as a whole and Hours is recomputed.
type UpdateLesson struct {
	ModuleID  string     `json:"module_id"`
	Date      *time.Time `json:"date"`
	StartTime string     `json:"start_time" validate:"omitempty,time_hhmm"`
	EndTime   string     `json:"end_time" validate:"omitempty,time_hhmm"`
	IsExam    *bool      `json:"is_exam"`
	Room      *string    `json:"room"`
	Notes     *string    `json:"notes"`
}

func (ul *UpdateLesson) Validate(_ context.Context, orig Lesson, validate *validator.Validate) error {
	if ul.ModuleID == "" {
		ul.ModuleID = orig.ModuleID
	}
	if ul.Date == nil {
		ul.Date = &orig.Date
	} else {
		day := Day(*ul.Date)
		ul.Date = &day
	}
	if ul.StartTime == "" {
		ul.StartTime = orig.StartTime
	}
	if ul.EndTime == "" {
		ul.EndTime = orig.EndTime
	}
	if ul.IsExam == nil {
		ul.IsExam = &orig.IsExam
	}
	if ul.Room == nil {
		ul.Room = &orig.Room
	} else {
		room := core.CleanString(*ul.Room)
		ul.Room = &room
	}
	if ul.Notes == nil {
		ul.Notes = &orig.Notes
	} else {
		notes := core.CleanString(*ul.Notes)
		ul.Notes = &notes
	}
	return validate.Struct(ul)
}

// Day truncates t to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// QueryFilter narrows lesson queries; zero values mean "no constraint".
// Filters are combined with AND.
type QueryFilter struct {
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
	TeacherID string    `query:"teacher"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.From.IsZero() && qf.To.IsZero() && qf.TeacherID == ""
}

func (qf *QueryFilter) Clean() {
	qf.TeacherID = core.CleanString(qf.TeacherID)
}
