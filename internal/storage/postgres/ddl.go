package postgres

import (
	"fmt"
	"strings"

	"sparkify/internal/storage"
)

// buildCreateSQL renders CREATE TABLE IF NOT EXISTS for t. Portable type
// names are valid PostgreSQL as-is.
func buildCreateSQL(t storage.TableSpec) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	defs := make([]string, 0, len(t.Columns)+len(t.Constraints))
	for _, c := range t.Columns {
		def, err := buildColumnDef(c)
		if err != nil {
			return "", fmt.Errorf("table %s: %w", t.Name, err)
		}
		defs = append(defs, def)
	}
	for _, c := range t.Constraints {
		defs = append(defs, buildConstraint(c))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", pgTableIdent(t.Name), strings.Join(defs, ", ")), nil
}

// buildColumnDef renders one column. Foreign key references are expressed
// inline.
func buildColumnDef(c storage.ColumnSpec) (string, error) {
	var b strings.Builder
	b.WriteString(pgIdent(c.Name))
	b.WriteString(" ")
	b.WriteString(strings.TrimSpace(c.Type))
	if !c.IsNullable() {
		b.WriteString(" NOT NULL")
	}
	if c.References != "" {
		table, col, err := storage.SplitReference(c.References)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " REFERENCES %s (%s)", pgTableIdent(table), pgIdent(col))
	}
	return b.String(), nil
}

func buildConstraint(c storage.ConstraintSpec) string {
	var b strings.Builder
	if c.Name != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(pgIdent(c.Name))
		b.WriteString(" ")
	}
	switch c.Kind {
	case storage.ConstraintPrimaryKey:
		fmt.Fprintf(&b, "PRIMARY KEY (%s)", identList(c.Columns))
	case storage.ConstraintUnique:
		fmt.Fprintf(&b, "UNIQUE (%s)", identList(c.Columns))
	case storage.ConstraintForeignKey:
		fmt.Fprintf(&b, "FOREIGN KEY (%s) REFERENCES %s (%s)",
			identList(c.Columns), pgTableIdent(c.RefTable), identList(c.RefColumns))
	case storage.ConstraintCheckNonNegative:
		conds := make([]string, len(c.Columns))
		for i, col := range c.Columns {
			conds[i] = pgIdent(col) + " >= 0"
		}
		fmt.Fprintf(&b, "CHECK (%s)", strings.Join(conds, " AND "))
	}
	return b.String()
}
