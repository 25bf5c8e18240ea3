package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"sparkify/internal/etlerr"
)

// Config is the minimal configuration needed to open a repository.
//
// Kind must match a registered backend ("postgres", "sqlite", "mssql"). DSN
// is passed through to the backend factory; validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is the backend-agnostic write surface of the star-schema loader.
//
// Each backend implements these semantics in its own dialect (Postgres and
// SQLite ON CONFLICT, SQL Server NOT EXISTS). Writes are sequential;
// implementations need not be safe for concurrent use.
type Repository interface {
	// Close releases backend resources. Call once.
	Close()

	// EnsureTables creates every table that does not exist yet, in slice order.
	// Existing tables are left untouched.
	EnsureTables(ctx context.Context, tables []TableSpec) error

	// InsertRows appends rows to table. Every row must be aligned with columns.
	//
	// When dedupeColumns is empty the insert is plain and a duplicate key fails
	// with a constraint error. When set, rows whose dedupeColumns already exist
	// (in the table or earlier in the same call) are skipped.
	//
	// Returns the number of rows written.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any, dedupeColumns []string) (int64, error)
}

// Factory opens a repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Call it from the backend
// package's init.
//
// Panics if kind is empty, f is nil, or kind is already registered.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New opens a repository using the backend registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, etlerr.Config("open storage", errors.New("missing kind"))
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, etlerr.Config("open storage", fmt.Errorf("unsupported storage.kind=%s (registered: %v)", cfg.Kind, Kinds()))
	}
	return f(ctx, cfg)
}

// Kinds lists the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
