package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"sparkify/internal/etlerr"
)

// classify maps SQLSTATE class 23 (integrity constraint violation) to a
// constraint error and everything else to a database error.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return etlerr.Constraint(op, err)
	}
	return etlerr.Database(op, err)
}
