package storage

import (
	"fmt"
	"strings"
)

// Constraint kinds understood by every backend.
const (
	ConstraintPrimaryKey       = "primary_key"
	ConstraintUnique           = "unique"
	ConstraintForeignKey       = "foreign_key"
	ConstraintCheckNonNegative = "check_non_negative"
)

// TableSpec declares one table. Backends render dialect-specific DDL from it.
type TableSpec struct {
	Name        string           `json:"name"`
	Columns     []ColumnSpec     `json:"columns"`
	Constraints []ConstraintSpec `json:"constraints,omitempty"`
}

// ColumnSpec declares one column.
//
// Type is a portable type name (smallint, bigint, varchar, varchar(n),
// numeric, time); each backend maps it to its dialect. References, when set,
// is an inline foreign key in "table(column)" form.
type ColumnSpec struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	References string `json:"references,omitempty"`
	Nullable   *bool  `json:"nullable,omitempty"`
}

// IsNullable reports whether the column accepts NULL. Columns are NOT NULL
// unless Nullable is explicitly true.
func (c ColumnSpec) IsNullable() bool {
	return c.Nullable != nil && *c.Nullable
}

// ConstraintSpec declares a table-level constraint.
//
// Name is required for check_non_negative (constraint names are unique per
// database on most backends) and optional otherwise. RefTable and RefColumns
// are used by foreign_key only.
type ConstraintSpec struct {
	Name       string   `json:"name,omitempty"`
	Kind       string   `json:"kind"`
	Columns    []string `json:"columns"`
	RefTable   string   `json:"ref_table,omitempty"`
	RefColumns []string `json:"ref_columns,omitempty"`
}

// ColumnNames returns the column names in declaration order.
func (t TableSpec) ColumnNames() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, c.Name)
	}
	return out
}

// PrimaryKey returns the columns of the primary_key constraint, or nil.
func (t TableSpec) PrimaryKey() []string {
	for _, c := range t.Constraints {
		if c.Kind == ConstraintPrimaryKey {
			return c.Columns
		}
	}
	return nil
}

// SplitReference parses an inline reference of the form "table(column)".
func SplitReference(ref string) (table, column string, err error) {
	ref = strings.TrimSpace(ref)
	open := strings.IndexByte(ref, '(')
	if open <= 0 || !strings.HasSuffix(ref, ")") {
		return "", "", fmt.Errorf("reference %q: want table(column)", ref)
	}
	table = strings.TrimSpace(ref[:open])
	column = strings.TrimSpace(ref[open+1 : len(ref)-1])
	if column == "" || strings.Contains(column, ",") {
		return "", "", fmt.Errorf("reference %q: want exactly one column", ref)
	}
	return table, column, nil
}

// Validate checks that t is renderable: a name, at least one uniquely named
// typed column, and constraints that only name declared columns.
func (t TableSpec) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("table name is empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", t.Name)
	}

	declared := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" || strings.TrimSpace(c.Type) == "" {
			return fmt.Errorf("table %s: column name/type must be set", t.Name)
		}
		if declared[name] {
			return fmt.Errorf("table %s: duplicate column %q", t.Name, name)
		}
		declared[name] = true
		if c.References != "" {
			if _, _, err := SplitReference(c.References); err != nil {
				return fmt.Errorf("table %s: column %s: %w", t.Name, name, err)
			}
		}
	}

	pks := 0
	for _, con := range t.Constraints {
		if len(con.Columns) == 0 {
			return fmt.Errorf("table %s: %s constraint requires columns", t.Name, con.Kind)
		}
		for _, col := range con.Columns {
			if !declared[col] {
				return fmt.Errorf("table %s: %s constraint names unknown column %q", t.Name, con.Kind, col)
			}
		}
		switch con.Kind {
		case ConstraintPrimaryKey:
			pks++
		case ConstraintUnique:
		case ConstraintForeignKey:
			if con.RefTable == "" || len(con.RefColumns) != len(con.Columns) {
				return fmt.Errorf("table %s: foreign key needs ref_table and one ref column per column", t.Name)
			}
		case ConstraintCheckNonNegative:
			if con.Name == "" {
				return fmt.Errorf("table %s: check constraint requires a name", t.Name)
			}
		default:
			return fmt.Errorf("table %s: unsupported constraint kind %q", t.Name, con.Kind)
		}
	}
	if pks > 1 {
		return fmt.Errorf("table %s: more than one primary key", t.Name)
	}
	return nil
}
