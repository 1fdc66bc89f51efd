package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/module"
)

type moduleRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Code       string    `db:"code"`
	TotalHours int       `db:"total_hours"`
	TeacherID  string    `db:"teacher_id"`
	ClassID    string    `db:"class_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r moduleRow) toModule() module.Module {
	return module.Module{
		ID:         r.ID,
		Name:       r.Name,
		Code:       r.Code,
		TotalHours: r.TotalHours,
		TeacherID:  r.TeacherID,
		ClassID:    r.ClassID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func newModuleRow(mod module.Module) moduleRow {
	return moduleRow{
		ID:         mod.ID,
		Name:       mod.Name,
		Code:       mod.Code,
		TotalHours: mod.TotalHours,
		TeacherID:  mod.TeacherID,
		ClassID:    mod.ClassID,
		CreatedAt:  mod.CreatedAt.UTC(),
		UpdatedAt:  mod.UpdatedAt.UTC(),
	}
}

type moduleRepository struct {
	db *sqlx.DB
}

var _ module.Repository = (*moduleRepository)(nil) // interface compliance check

func NewModuleRepository(db *sqlx.DB) *moduleRepository {
	return &moduleRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to module.ErrNotFound
func (repo moduleRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return module.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo moduleRepository) CreateModule(ctx context.Context, mod module.Module) (module.Module, error) {
	mod.ID = uuid.New().String()
	row := newModuleRow(mod)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO module (id, name, code, total_hours, teacher_id, class_id, created_at, updated_at)
		VALUES (:id, :name, :code, :total_hours, :teacher_id, :class_id, :created_at, :updated_at)`, row)
	if err != nil {
		if isPqError(errors.Cause(err), pqForeignKeyViolation) {
			return module.Module{}, repo.trapFKErr(errors.Cause(err))
		}
		return module.Module{}, errors.Wrap(err, "inserting module")
	}
	return row.toModule(), nil
}

// trapFKErr resolves which reference of a module row is dangling
// by looking at the violated constraint name.
func (repo moduleRepository) trapFKErr(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		if strings.Contains(pqErr.Constraint, "teacher") {
			return module.ErrTeacherMissing
		}
		if strings.Contains(pqErr.Constraint, "class") {
			return module.ErrClassMissing
		}
	}
	return err
}

func (repo moduleRepository) QueryModules(ctx context.Context, filter *module.QueryFilter, ordering ...core.DBOrdering) ([]module.Module, error) {
	query := `SELECT * FROM module`
	var args []interface{}
	if filter != nil {
		filter.Clean()
		where := ""
		if filter.ClassID != "" {
			args = append(args, filter.ClassID)
			where = fmt.Sprintf(" WHERE class_id = $%d", len(args))
		}
		if filter.TeacherID != "" {
			args = append(args, filter.TeacherID)
			if where == "" {
				where = fmt.Sprintf(" WHERE teacher_id = $%d", len(args))
			} else {
				where += fmt.Sprintf(" AND teacher_id = $%d", len(args))
			}
		}
		query += where
	}
	query += orderBy("name ASC", ordering, "name", "code", "total_hours", "created_at")

	var rows []moduleRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}

	mods := make([]module.Module, 0, len(rows))
	for _, row := range rows {
		mods = append(mods, row.toModule())
	}
	return mods, nil
}

func (repo moduleRepository) GetModuleByID(ctx context.Context, id string) (module.Module, error) {
	var row moduleRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM module WHERE id = $1`, id); err != nil {
		return module.Module{}, repo.trapNoRowsErr(err, "getting module by id")
	}
	return row.toModule(), nil
}

func (repo moduleRepository) UpdateModule(ctx context.Context, mod module.Module) (module.Module, error) {
	row := newModuleRow(mod)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE module
		SET name = :name, code = :code, total_hours = :total_hours,
		    teacher_id = :teacher_id, class_id = :class_id, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		if isPqError(errors.Cause(err), pqForeignKeyViolation) {
			return module.Module{}, repo.trapFKErr(errors.Cause(err))
		}
		return module.Module{}, errors.Wrap(err, "updating module")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return module.Module{}, module.ErrNotFound
	}
	return repo.GetModuleByID(ctx, mod.ID)
}

func (repo moduleRepository) DeleteModule(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM module WHERE id = $1`, id)
	if err != nil {
		if isPqError(errors.Cause(err), pqForeignKeyViolation) {
			return module.ErrDeleteBlocked
		}
		return errors.Wrap(err, "deleting module")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return module.ErrNotFound
	}
	return nil
}
