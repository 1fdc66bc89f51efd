// Package sqlxrepos implements the domain repositories on PostgreSQL
// via sqlx.
package sqlxrepos

import (
	"strings"

	"github.com/lib/pq"

	"github.com/fbasso/maestro/core"
)

// postgres error codes of interest
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func isPqError(err error, code string) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && string(pqErr.Code) == code
}

func orderBy(defaultOrder string, ordering []core.DBOrdering, allowed ...string) string {
	if len(ordering) == 0 {
		return " ORDER BY " + defaultOrder
	}
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		for _, fld := range allowed {
			if ord.Field == fld {
				terms = append(terms, ord.String())
				break
			}
		}
	}
	if len(terms) == 0 {
		return " ORDER BY " + defaultOrder
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}
