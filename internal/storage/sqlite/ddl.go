package sqlite

import (
	"fmt"
	"strings"

	"sparkify/internal/storage"
)

// sqliteType maps a portable type name to the declared type that gives the
// column the right affinity.
func sqliteType(typ string) string {
	t := strings.ToLower(strings.TrimSpace(typ))
	switch {
	case t == "numeric" || strings.HasPrefix(t, "numeric("):
		return "REAL"
	case t == "time":
		return "TEXT"
	default:
		return typ
	}
}

func buildCreateSQL(t storage.TableSpec) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	var parts []string
	for _, c := range t.Columns {
		col := fmt.Sprintf("%s %s", sqlIdent(c.Name), sqliteType(c.Type))
		if !c.IsNullable() {
			col += " NOT NULL"
		}
		if c.References != "" {
			table, ref, err := storage.SplitReference(c.References)
			if err != nil {
				return "", fmt.Errorf("table %s: %w", t.Name, err)
			}
			col += fmt.Sprintf(" REFERENCES %s (%s)", sqlIdent(table), sqlIdent(ref))
		}
		parts = append(parts, col)
	}

	for _, con := range t.Constraints {
		prefix := ""
		if con.Name != "" {
			prefix = "CONSTRAINT " + sqlIdent(con.Name) + " "
		}
		switch con.Kind {
		case storage.ConstraintPrimaryKey:
			parts = append(parts, fmt.Sprintf("%sPRIMARY KEY (%s)", prefix, joinIdentList(con.Columns)))
		case storage.ConstraintUnique:
			parts = append(parts, fmt.Sprintf("%sUNIQUE (%s)", prefix, joinIdentList(con.Columns)))
		case storage.ConstraintForeignKey:
			parts = append(parts, fmt.Sprintf("%sFOREIGN KEY (%s) REFERENCES %s (%s)",
				prefix, joinIdentList(con.Columns), sqlIdent(con.RefTable), joinIdentList(con.RefColumns)))
		case storage.ConstraintCheckNonNegative:
			conds := make([]string, len(con.Columns))
			for i, c := range con.Columns {
				conds[i] = sqlIdent(c) + " >= 0"
			}
			parts = append(parts, fmt.Sprintf("%sCHECK (%s)", prefix, strings.Join(conds, " AND ")))
		}
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}
