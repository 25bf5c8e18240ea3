package mssql

import (
	"fmt"
	"strings"

	"sparkify/internal/storage"
)

func mssqlType(typ string) string {
	t := strings.ToLower(strings.TrimSpace(typ))
	switch {
	case t == "varchar":
		return "nvarchar(450)"
	case strings.HasPrefix(t, "varchar("):
		return "n" + t
	case t == "numeric":
		return "float"
	case t == "time":
		return "time(0)"
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
		def, err := mssqlColumnDef(c)
		if err != nil {
			return "", fmt.Errorf("table %s: %w", t.Name, err)
		}
		parts = append(parts, def)
	}
	for _, con := range t.Constraints {
		parts = append(parts, mssqlConstraint(con))
	}
	return wrapCreateIfMissing(t.Name, strings.Join(parts, ", ")), nil
}

// wrapCreateIfMissing wraps a CREATE TABLE statement in an OBJECT_ID guard,
// SQL Server having no CREATE TABLE IF NOT EXISTS.
func wrapCreateIfMissing(tableName string, innerDefs string) string {
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN CREATE TABLE %s (%s); END;",
		strings.ReplaceAll(mssqlTableIdent(tableName), "'", "''"),
		mssqlTableIdent(tableName),
		innerDefs,
	)
}

// mssqlColumnDef respects nullability and attaches an inline REFERENCES
// clause if provided.
func mssqlColumnDef(c storage.ColumnSpec) (string, error) {
	var b strings.Builder
	b.WriteString(mssqlIdent(c.Name))
	b.WriteString(" ")
	b.WriteString(mssqlType(c.Type))
	if c.IsNullable() {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if c.References != "" {
		table, col, err := storage.SplitReference(c.References)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " REFERENCES %s (%s)", mssqlTableIdent(table), mssqlIdent(col))
	}
	return b.String(), nil
}

func mssqlConstraint(c storage.ConstraintSpec) string {
	var b strings.Builder
	if c.Name != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(mssqlIdent(c.Name))
		b.WriteString(" ")
	}
	switch c.Kind {
	case storage.ConstraintPrimaryKey:
		fmt.Fprintf(&b, "PRIMARY KEY (%s)", identList("", c.Columns))
	case storage.ConstraintUnique:
		fmt.Fprintf(&b, "UNIQUE (%s)", identList("", c.Columns))
	case storage.ConstraintForeignKey:
		fmt.Fprintf(&b, "FOREIGN KEY (%s) REFERENCES %s (%s)",
			identList("", c.Columns), mssqlTableIdent(c.RefTable), identList("", c.RefColumns))
	case storage.ConstraintCheckNonNegative:
		conds := make([]string, len(c.Columns))
		for i, col := range c.Columns {
			conds[i] = mssqlIdent(col) + " >= 0"
		}
		fmt.Fprintf(&b, "CHECK (%s)", strings.Join(conds, " AND "))
	}
	return b.String()
}
