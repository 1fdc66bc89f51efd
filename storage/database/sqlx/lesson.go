package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core/lesson"
)

type lessonRow struct {
	ID        string    `db:"id"`
	ModuleID  string    `db:"module_id"`
	Date      time.Time `db:"date"`
	StartTime string    `db:"start_time"`
	EndTime   string    `db:"end_time"`
	Hours     float64   `db:"hours"`
	IsExam    bool      `db:"is_exam"`
	Room      string    `db:"room"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r lessonRow) toLesson() lesson.Lesson {
	return lesson.Lesson{
		ID:        r.ID,
		ModuleID:  r.ModuleID,
		Date:      lesson.Day(r.Date),
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Hours:     r.Hours,
		IsExam:    r.IsExam,
		Room:      r.Room,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newLessonRow(lsn lesson.Lesson) lessonRow {
	return lessonRow{
		ID:        lsn.ID,
		ModuleID:  lsn.ModuleID,
		Date:      lsn.Date,
		StartTime: lsn.StartTime,
		EndTime:   lsn.EndTime,
		Hours:     lsn.Hours,
		IsExam:    lsn.IsExam,
		Room:      lsn.Room,
		Notes:     lsn.Notes,
		CreatedAt: lsn.CreatedAt.UTC(),
		UpdatedAt: lsn.UpdatedAt.UTC(),
	}
}

// lessonDetailRow extends lessonRow with the joined module and teacher
// display columns.
type lessonDetailRow struct {
	lessonRow
	ModuleName  string `db:"module_name"`
	TeacherID   string `db:"teacher_id"`
	TeacherName string `db:"teacher_name"`
}

func (r lessonDetailRow) toDetail() lesson.Detail {
	return lesson.Detail{
		Lesson:      r.toLesson(),
		ModuleName:  r.ModuleName,
		TeacherID:   r.TeacherID,
		TeacherName: r.TeacherName,
	}
}

const lessonDetailQuery = `
	SELECT l.id, l.module_id, l.date, l.start_time, l.end_time, l.hours,
	       l.is_exam, l.room, l.notes, l.created_at, l.updated_at,
	       m.name AS module_name, m.teacher_id, t.name AS teacher_name
	FROM lesson l
	JOIN module m ON m.id = l.module_id
	JOIN teacher t ON t.id = m.teacher_id`

type lessonRepository struct {
	db *sqlx.DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *sqlx.DB) *lessonRepository {
	return &lessonRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to lesson.ErrNotFound
func (repo lessonRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return lesson.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	lsn.ID = uuid.New().String()
	row := newLessonRow(lsn)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO lesson (id, module_id, date, start_time, end_time, hours, is_exam, room, notes, created_at, updated_at)
		VALUES (:id, :module_id, :date, :start_time, :end_time, :hours, :is_exam, :room, :notes, :created_at, :updated_at)`, row)
	if err != nil {
		if isPqError(errors.Cause(err), pqForeignKeyViolation) {
			return lesson.Lesson{}, lesson.ErrModuleNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return row.toLesson(), nil
}

func (repo lessonRepository) QueryLessons(ctx context.Context, filter *lesson.QueryFilter) ([]lesson.Detail, error) {
	query := lessonDetailQuery
	var args []interface{}
	if filter != nil && !filter.IsEmpty() {
		filter.Clean()
		var conds []string
		if !filter.From.IsZero() {
			args = append(args, lesson.Day(filter.From))
			conds = append(conds, fmt.Sprintf("l.date >= $%d", len(args)))
		}
		if !filter.To.IsZero() {
			args = append(args, lesson.Day(filter.To))
			conds = append(conds, fmt.Sprintf("l.date <= $%d", len(args)))
		}
		if filter.TeacherID != "" {
			args = append(args, filter.TeacherID)
			conds = append(conds, fmt.Sprintf("m.teacher_id = $%d", len(args)))
		}
		query += "\n\tWHERE " + conds[0]
		for _, cond := range conds[1:] {
			query += " AND " + cond
		}
	}
	query += "\n\tORDER BY l.date ASC, l.start_time ASC"

	var rows []lessonDetailRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}

	details := make([]lesson.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toDetail())
	}
	return details, nil
}

func (repo lessonRepository) GetLessonByID(ctx context.Context, id string) (lesson.Detail, error) {
	var row lessonDetailRow
	if err := repo.db.GetContext(ctx, &row, lessonDetailQuery+"\n\tWHERE l.id = $1", id); err != nil {
		return lesson.Detail{}, repo.trapNoRowsErr(err, "getting lesson by id")
	}
	return row.toDetail(), nil
}

func (repo lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	row := newLessonRow(lsn)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE lesson
		SET module_id = :module_id, date = :date, start_time = :start_time,
		    end_time = :end_time, hours = :hours, is_exam = :is_exam,
		    room = :room, notes = :notes, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		if isPqError(errors.Cause(err), pqForeignKeyViolation) {
			return lesson.Lesson{}, lesson.ErrModuleNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lesson.Lesson{}, lesson.ErrNotFound
	}

	detail, err := repo.GetLessonByID(ctx, lsn.ID)
	if err != nil {
		return lesson.Lesson{}, err
	}
	return detail.Lesson, nil
}

func (repo lessonRepository) DeleteLesson(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM lesson WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lesson.ErrNotFound
	}
	return nil
}

func (repo lessonRepository) SumHoursByModule(ctx context.Context, moduleIDs ...string) (map[string]float64, error) {
	query := `SELECT module_id, SUM(hours) AS total FROM lesson`
	var args []interface{}
	if len(moduleIDs) > 0 {
		query += ` WHERE module_id = ANY($1)`
		args = append(args, pq.Array(moduleIDs))
	}
	query += ` GROUP BY module_id`

	var rows []struct {
		ModuleID string  `db:"module_id"`
		Total    float64 `db:"total"`
	}
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "summing lesson hours")
	}

	sums := make(map[string]float64, len(rows))
	for _, row := range rows {
		sums[row.ModuleID] = row.Total
	}
	return sums, nil
}

func (repo lessonRepository) CountLessonsBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM lesson WHERE date >= $1 AND date <= $2`,
		lesson.Day(from), lesson.Day(to),
	)
	if err != nil {
		return 0, errors.Wrap(err, "counting lessons")
	}
	return count, nil
}

func (repo lessonRepository) GetNextExam(ctx context.Context, after time.Time) (lesson.Detail, error) {
	var row lessonDetailRow
	err := repo.db.GetContext(ctx, &row,
		lessonDetailQuery+"\n\tWHERE l.is_exam AND l.date >= $1\n\tORDER BY l.date ASC\n\tLIMIT 1",
		after,
	)
	if err != nil {
		return lesson.Detail{}, repo.trapNoRowsErr(err, "getting next exam")
	}
	return row.toDetail(), nil
}

func (repo lessonRepository) QueryUpcomingLessons(ctx context.Context, from time.Time, limit int) ([]lesson.Detail, error) {
	var rows []lessonDetailRow
	err := repo.db.SelectContext(ctx, &rows,
		lessonDetailQuery+"\n\tWHERE l.date >= $1\n\tORDER BY l.date ASC, l.start_time ASC\n\tLIMIT $2",
		lesson.Day(from), limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying upcoming lessons")
	}

	details := make([]lesson.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toDetail())
	}
	return details, nil
}
