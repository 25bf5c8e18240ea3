package sqlite

import (
	"errors"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"sparkify/internal/etlerr"
)

// classify maps the SQLITE_CONSTRAINT result code family (primary key, unique,
// not null, check, foreign key) to a constraint error.
func classify(op string, err error) error {
	var sqErr *msqlite.Error
	if errors.As(err, &sqErr) && sqErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return etlerr.Constraint(op, err)
	}
	return etlerr.Database(op, err)
}
