// Package postgres is the PostgreSQL backend of storage.Repository, built on
// pgx connection pooling.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sparkify/internal/etlerr"
	"sparkify/internal/storage"
)

// maxParams is the PostgreSQL wire-protocol limit on bind parameters per
// statement.
const maxParams = 65535

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repo implements storage.Repository for PostgreSQL.
//
// Rows are written with multi-row INSERT statements rather than COPY: values
// such as start_time travel as text and are cast by the server, which COPY's
// binary format does not allow.
type Repo struct {
	pool *pgxpool.Pool
	db   execer
}

// New opens a pool for cfg.DSN and verifies connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, etlerr.Database("connect postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, etlerr.Database("ping postgres", err)
	}
	return &Repo{pool: pool, db: pool}, nil
}

// Close closes the connection pool.
func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// EnsureTables runs CREATE TABLE IF NOT EXISTS for every table, in order.
func (r *Repo) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		q, err := buildCreateSQL(t)
		if err != nil {
			return etlerr.Config("table spec", err)
		}
		if _, err := r.db.Exec(ctx, q); err != nil {
			return classify("create table "+t.Name, err)
		}
	}
	return nil
}

// InsertRows appends rows in statements of at most maxParams parameters.
//
// With dedupeColumns set, each statement ends in ON CONFLICT (...) DO NOTHING,
// which requires a unique index on exactly those columns.
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
		tag, err := r.db.Exec(ctx, q, args...)
		if err != nil {
			return classify(op, err)
		}
		total += tag.RowsAffected()
		return nil
	})
	return total, err
}

// buildInsertSQL constructs a single INSERT statement and its args.
//
// Placeholders are numbered $1..$n row-major. rows must be aligned with
// columns.
func buildInsertSQL(table string, columns []string, rows [][]any, dedupeColumns []string) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgTableIdent(table))
	b.WriteString(" (")
	b.WriteString(identList(columns))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}

	if len(dedupeColumns) > 0 {
		b.WriteString(" ON CONFLICT (")
		b.WriteString(identList(dedupeColumns))
		b.WriteString(") DO NOTHING")
	}

	b.WriteString(";")
	return b.String(), args
}

// pgIdent double-quotes an identifier, escaping embedded quotes.
func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// pgTableIdent quotes each part of a possibly schema-qualified name.
//
//	"public.songs" -> "public"."songs"
func pgTableIdent(name string) string {
	parts := strings.Split(name, ".")
	for i := range parts {
		parts[i] = pgIdent(strings.TrimSpace(parts[i]))
	}
	return strings.Join(parts, ".")
}

func identList(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return strings.Join(out, ", ")
}
