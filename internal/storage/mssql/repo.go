// Package mssql is the Microsoft SQL Server backend of storage.Repository.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sparkify/internal/etlerr"
	"sparkify/internal/storage"
)

// maxParams keeps statements under SQL Server's limit of 2100 parameters.
const maxParams = 2000

// Repo implements storage.Repository for SQL Server.
//
// Inserts:
//   - Plain: multi-row INSERT ... VALUES.
//   - Dedupe: INSERT ... SELECT FROM (VALUES ...) WHERE NOT EXISTS, with
//     duplicates inside the batch collapsed first (first occurrence wins), since
//     the VALUES source is not checked against itself.
//
// Portable types are mapped: varchar -> nvarchar(450) (the widest indexable
// nvarchar), numeric -> float, time -> time(0).
type Repo struct {
	db dbConn
}

// dbConn is the subset of *sql.DB this package uses.
type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}

func init() {
	storage.Register("mssql", New)
}

// New opens cfg.DSN with the "sqlserver" driver and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	raw, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, etlerr.Database("open sqlserver", err)
	}
	raw.SetMaxOpenConns(4)

	if err := raw.PingContext(ctx); err != nil {
		_ = raw.Close()
		return nil, etlerr.Database("ping sqlserver", err)
	}
	return &Repo{db: raw}, nil
}

// Close releases database resources held by this repository.
func (r *Repo) Close() {
	if r == nil || r.db == nil {
		return
	}
	_ = r.db.Close()
}

// EnsureTables creates each missing table behind an OBJECT_ID guard.
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

// InsertRows appends rows in chunks that respect the parameter limit.
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
		var q string
		var args []any
		if len(dedupeColumns) == 0 {
			q, args = buildBulkInsertSQL(table, columns, part)
		} else {
			q, args = buildInsertNotExistsSQL(table, columns, part, dedupeColumns)
		}
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

// buildBulkInsertSQL builds a single INSERT ... VALUES statement for all rows.
func buildBulkInsertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(mssqlTableIdent(table))
	b.WriteString(" (")
	b.WriteString(identList("", columns))
	b.WriteString(") VALUES ")
	args := writeValues(&b, columns, rows)
	return b.String(), args
}

// buildInsertNotExistsSQL materializes incoming rows as a derived table v and
// inserts only those with no existing match on dedupeColumns.
func buildInsertNotExistsSQL(table string, columns []string, rows [][]any, dedupeColumns []string) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(mssqlTableIdent(table))
	b.WriteString(" (")
	b.WriteString(identList("", columns))
	b.WriteString(") SELECT ")
	b.WriteString(identList("v.", columns))
	b.WriteString(" FROM (VALUES ")
	args := writeValues(&b, columns, rows)
	b.WriteString(") AS v(")
	b.WriteString(identList("", columns))
	b.WriteString(") WHERE NOT EXISTS (SELECT 1 FROM ")
	b.WriteString(mssqlTableIdent(table))
	b.WriteString(" t WHERE ")
	for i, dc := range dedupeColumns {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "t.%s = v.%s", mssqlIdent(dc), mssqlIdent(dc))
	}
	b.WriteString(")")
	return b.String(), args
}

// writeValues writes "(@p1, @p2), (@p3, @p4)" and returns the args in order.
func writeValues(b *strings.Builder, columns []string, rows [][]any) []any {
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
			fmt.Fprintf(b, "@p%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}
	return args
}

// mssqlIdent returns a bracket-quoted identifier, escaping ']' as ']]'.
func mssqlIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// mssqlTableIdent returns a bracket-quoted identifier for schema-qualified names.
//
//	"dbo.songs" -> [dbo].[songs]
func mssqlTableIdent(name string) string {
	parts := strings.Split(name, ".")
	for i := range parts {
		parts[i] = mssqlIdent(strings.TrimSpace(parts[i]))
	}
	return strings.Join(parts, ".")
}

func identList(prefix string, cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + mssqlIdent(c)
	}
	return strings.Join(out, ", ")
}
