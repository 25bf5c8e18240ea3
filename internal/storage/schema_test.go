package storage

import (
	"strings"
	"testing"
)

func boolPtr(v bool) *bool { return &v }

func TestTableSpec_Validate(t *testing.T) {
	t.Parallel()

	base := func() TableSpec {
		return TableSpec{
			Name: "songs",
			Columns: []ColumnSpec{
				{Name: "song_id", Type: "varchar"},
				{Name: "artist_id", Type: "varchar", References: "artists(artist_id)", Nullable: boolPtr(true)},
				{Name: "year", Type: "smallint"},
			},
			Constraints: []ConstraintSpec{
				{Kind: ConstraintPrimaryKey, Columns: []string{"song_id"}},
				{Name: "songs_year_nonneg", Kind: ConstraintCheckNonNegative, Columns: []string{"year"}},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*TableSpec)
		wantErr string
	}{
		{name: "valid", mutate: func(*TableSpec) {}},
		{name: "no_name", mutate: func(t *TableSpec) { t.Name = " " }, wantErr: "table name is empty"},
		{name: "no_columns", mutate: func(t *TableSpec) { t.Columns = nil }, wantErr: "no columns"},
		{name: "duplicate_column", mutate: func(t *TableSpec) { t.Columns = append(t.Columns, ColumnSpec{Name: "year", Type: "int"}) }, wantErr: "duplicate column"},
		{name: "bad_reference", mutate: func(t *TableSpec) { t.Columns[1].References = "artists" }, wantErr: "want table(column)"},
		{name: "unknown_constraint_column", mutate: func(t *TableSpec) {
			t.Constraints = append(t.Constraints, ConstraintSpec{Kind: ConstraintUnique, Columns: []string{"title"}})
		}, wantErr: "unknown column"},
		{name: "unnamed_check", mutate: func(t *TableSpec) { t.Constraints[1].Name = "" }, wantErr: "requires a name"},
		{name: "fk_arity", mutate: func(t *TableSpec) {
			t.Constraints = append(t.Constraints, ConstraintSpec{Kind: ConstraintForeignKey, Columns: []string{"artist_id"}, RefTable: "artists"})
		}, wantErr: "foreign key"},
		{name: "two_pks", mutate: func(t *TableSpec) {
			t.Constraints = append(t.Constraints, ConstraintSpec{Kind: ConstraintPrimaryKey, Columns: []string{"year"}})
		}, wantErr: "more than one primary key"},
		{name: "unknown_kind", mutate: func(t *TableSpec) { t.Constraints[0].Kind = "exclude" }, wantErr: "unsupported constraint kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err=%v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTableSpec_PrimaryKeyAndColumns(t *testing.T) {
	t.Parallel()

	spec := TableSpec{
		Name:        "users",
		Columns:     []ColumnSpec{{Name: "user_id", Type: "smallint"}, {Name: "level", Type: "varchar"}},
		Constraints: []ConstraintSpec{{Kind: ConstraintPrimaryKey, Columns: []string{"user_id", "level"}}},
	}
	if got := strings.Join(spec.PrimaryKey(), ","); got != "user_id,level" {
		t.Fatalf("PrimaryKey()=%s", got)
	}
	if got := strings.Join(spec.ColumnNames(), ","); got != "user_id,level" {
		t.Fatalf("ColumnNames()=%s", got)
	}
	if (TableSpec{}).PrimaryKey() != nil {
		t.Fatalf("expected nil primary key")
	}
}

func TestSplitReference(t *testing.T) {
	t.Parallel()

	table, col, err := SplitReference(" time(ts) ")
	if err != nil || table != "time" || col != "ts" {
		t.Fatalf("got %q %q %v", table, col, err)
	}
	for _, bad := range []string{"", "time", "(ts)", "users(user_id, level)", "time()"} {
		if _, _, err := SplitReference(bad); err == nil {
			t.Fatalf("SplitReference(%q) expected error", bad)
		}
	}
}
