package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/teacher"
)

type teacherRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	Phone      string    `db:"phone"`
	IsInternal bool      `db:"is_internal"`
	Color      string    `db:"color"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r teacherRow) toTeacher() teacher.Teacher {
	return teacher.Teacher{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		IsInternal: r.IsInternal,
		Color:      r.Color,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func newTeacherRow(tch teacher.Teacher) teacherRow {
	return teacherRow{
		ID:         tch.ID,
		Name:       tch.Name,
		Email:      tch.Email,
		Phone:      tch.Phone,
		IsInternal: tch.IsInternal,
		Color:      tch.Color,
		CreatedAt:  tch.CreatedAt.UTC(),
		UpdatedAt:  tch.UpdatedAt.UTC(),
	}
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to teacher.ErrNotFound
func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return teacher.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedTeachers ...teacher.Teacher) error {
	query := `SELECT EXISTS (SELECT 1 FROM teacher WHERE email = $1`
	args := []interface{}{email}
	if len(excludedTeachers) > 0 {
		ids := make([]string, 0, len(excludedTeachers))
		for _, t := range excludedTeachers {
			ids = append(ids, t.ID)
		}
		query += ` AND NOT (id = ANY($2))`
		args = append(args, pq.Array(ids))
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking teacher uniqueness")
	}
	if exists {
		return teacher.ErrEmailExists
	}
	return nil
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	tch.ID = uuid.New().String()
	row := newTeacherRow(tch)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO teacher (id, name, email, phone, is_internal, color, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :is_internal, :color, :created_at, :updated_at)`, row)
	if err != nil {
		if isPqError(errors.Cause(err), pqUniqueViolation) {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return row.toTeacher(), nil
}

func (repo teacherRepository) QueryAllTeachers(ctx context.Context, ordering ...core.DBOrdering) ([]teacher.Teacher, error) {
	var rows []teacherRow
	query := `SELECT * FROM teacher` + orderBy("name ASC", ordering, "name", "email", "created_at")
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}

	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toTeacher())
	}
	return teachers, nil
}

func (repo teacherRepository) GetTeacherByID(ctx context.Context, id string) (teacher.Teacher, error) {
	var row teacherRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM teacher WHERE id = $1`, id); err != nil {
		return teacher.Teacher{}, repo.trapNoRowsErr(err, "getting teacher by id")
	}
	return row.toTeacher(), nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	row := newTeacherRow(tch)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE teacher
		SET name = :name, email = :email, phone = :phone,
		    is_internal = :is_internal, color = :color, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		if isPqError(errors.Cause(err), pqUniqueViolation) {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacherByID(ctx, tch.ID)
}

func (repo teacherRepository) DeleteTeacher(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM teacher WHERE id = $1`, id)
	if err != nil {
		if isPqError(errors.Cause(err), pqForeignKeyViolation) {
			return teacher.ErrDeleteBlocked
		}
		return errors.Wrap(err, "deleting teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}
