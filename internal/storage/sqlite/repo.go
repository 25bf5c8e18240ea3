// Package sqlite is the SQLite backend of storage.Repository, using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"sparkify/internal/etlerr"
	"sparkify/internal/storage"
)

// maxParams is the default SQLITE_MAX_VARIABLE_NUMBER of the bundled library.
const maxParams = 32766

// Repo implements storage.Repository for SQLite.
//
// Differences from Postgres:
//   - Foreign keys are only enforced with PRAGMA foreign_keys=ON, a
//     per-connection setting applied through the DSN.
//   - Writes are serialized on a single connection.
//   - numeric is stored as REAL so durations keep their fractional part and
//     compare equal to the float64 values they were loaded from.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

// New opens the database at cfg.DSN (e.g. "file:sparkify.db") with foreign
// key enforcement enabled.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", withForeignKeys(cfg.DSN))
	if err != nil {
		return nil, etlerr.Database("open sqlite", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, etlerr.Database("ping sqlite", err)
	}
	return &Repo{db: db}, nil
}

// withForeignKeys adds the driver's _pragma parameter so every new connection
// runs PRAGMA foreign_keys(1).
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func (r *Repo) Close() { _ = r.db.Close() }

// EnsureTables runs CREATE TABLE IF NOT EXISTS for every table, in order.
func (r *Repo) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		q, err := buildCreateSQL(t)
		if err != nil {
			return etlerr.Config("table spec", err)
		}
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return classify("create table "+t.Name, err)
		}
	}
	return nil
}

// InsertRows performs multi-row inserts.
//
// With dedupeColumns set the statement uses ON CONFLICT (...) DO NOTHING,
// which only skips uniqueness conflicts; NOT NULL, CHECK and foreign key
// violations still fail.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any, dedupeColumns []string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	op := "insert " + table
	if err := storage.CheckRows(columns, rows); err != nil {
		return 0, etlerr.Database(op, err)
	}
	if len(dedupeColumns) > 0 {
		var err error
		if rows, err = storage.DedupeRowsByColumns(rows, columns, dedupeColumns); err != nil {
			return 0, etlerr.Database(op, err)
		}
	}

	var total int64
	err := storage.EachChunk(rows, storage.RowsPerStatement(maxParams, len(columns)), func(part [][]any) error {
		q, args := buildInsertSQL(table, columns, part, dedupeColumns)
		res, err := r.db.ExecContext(ctx, q, args...)
		if err != nil {
			return classify(op, err)
		}
		n, _ := res.RowsAffected()
		total += n
		return nil
	})
	return total, err
}

func buildInsertSQL(table string, columns []string, rows [][]any, dedupeColumns []string) (string, []any) {
	placeholders := "(" + strings.TrimRight(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	b.WriteString(joinIdentList(columns))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders)
		args = append(args, row...)
	}

	if len(dedupeColumns) > 0 {
		b.WriteString(" ON CONFLICT (")
		b.WriteString(joinIdentList(dedupeColumns))
		b.WriteString(") DO NOTHING")
	}
	return b.String(), args
}

func sqlIdent(id string) string {
	// SQLite supports "quoted identifiers"
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func joinIdentList(columns []string) string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		out = append(out, sqlIdent(c))
	}
	return strings.Join(out, ", ")
}
