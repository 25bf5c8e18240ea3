package mssql

import (
	"errors"

	msdriver "github.com/microsoft/go-mssqldb"

	"sparkify/internal/etlerr"
)

// Integrity error numbers: 2627 PRIMARY KEY/UNIQUE constraint, 2601 unique
// index, 547 FOREIGN KEY/CHECK conflict, 515 NULL into NOT NULL column.
var constraintNumbers = map[int32]bool{2627: true, 2601: true, 547: true, 515: true}

func classify(op string, err error) error {
	var msErr msdriver.Error
	if errors.As(err, &msErr) && constraintNumbers[msErr.Number] {
		return etlerr.Constraint(op, err)
	}
	return etlerr.Database(op, err)
}
