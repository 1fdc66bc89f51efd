package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/class"
)

type classRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Year      int       `db:"year"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r classRow) toClass() class.Class {
	return class.Class{
		ID:        r.ID,
		Name:      r.Name,
		Year:      r.Year,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newClassRow(cls class.Class) classRow {
	return classRow{
		ID:        cls.ID,
		Name:      cls.Name,
		Year:      cls.Year,
		IsActive:  cls.IsActive,
		CreatedAt: cls.CreatedAt.UTC(),
		UpdatedAt: cls.UpdatedAt.UTC(),
	}
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to class.ErrNotFound
func (repo classRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return class.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	row := newClassRow(cls)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO class (id, name, year, is_active, created_at, updated_at)
		VALUES (:id, :name, :year, :is_active, :created_at, :updated_at)`, row)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return row.toClass(), nil
}

func (repo classRepository) QueryAllClasses(ctx context.Context, ordering ...core.DBOrdering) ([]class.Class, error) {
	var rows []classRow
	query := `SELECT * FROM class` + orderBy("name ASC", ordering, "name", "year", "created_at")
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}

	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.toClass())
	}
	return classes, nil
}

func (repo classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM class WHERE id = $1`, id); err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "getting class by id")
	}
	return row.toClass(), nil
}

func (repo classRepository) GetActiveClass(ctx context.Context) (class.Class, error) {
	var row classRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM class WHERE is_active LIMIT 1`)
	if err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "getting active class")
	}
	return row.toClass(), nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	row := newClassRow(cls)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE class
		SET name = :name, year = :year, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return repo.GetClassByID(ctx, cls.ID)
}

func (repo classRepository) DeleteClass(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class WHERE id = $1`, id)
	if err != nil {
		if isPqError(errors.Cause(err), pqForeignKeyViolation) {
			return class.ErrDeleteBlocked
		}
		return errors.Wrap(err, "deleting class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.ErrNotFound
	}
	return nil
}
