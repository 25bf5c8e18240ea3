package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sparkify/internal/etlerr"
)

type fakeRepo struct {
	closeCalls int
}

func (f *fakeRepo) Close()                                                { f.closeCalls++ }
func (f *fakeRepo) EnsureTables(ctx context.Context, t []TableSpec) error { return nil }
func (f *fakeRepo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any, dedupeColumns []string) (int64, error) {
	return int64(len(rows)), nil
}

func TestNew_UsesRegisteredFactory(t *testing.T) {
	var gotDSN string
	Register("fake-new", func(ctx context.Context, cfg Config) (Repository, error) {
		gotDSN = cfg.DSN
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake-new", DSN: "mem://x"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if gotDSN != "mem://x" {
		t.Fatalf("factory got DSN %q", gotDSN)
	}
	repo.Close()
	if repo.(*fakeRepo).closeCalls != 1 {
		t.Fatalf("expected Close to reach the backend")
	}

	found := false
	for _, k := range Kinds() {
		if k == "fake-new" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Kinds() missing fake-new: %v", Kinds())
	}
}

func TestNew_FactoryErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	Register("fake-err", func(ctx context.Context, cfg Config) (Repository, error) { return nil, boom })

	if _, err := New(context.Background(), Config{Kind: "fake-err"}); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}

func TestNew_UnknownOrMissingKind(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty kind")
	}
	_, err := New(context.Background(), Config{Kind: "oracle"})
	if err == nil || !strings.Contains(err.Error(), "unsupported storage.kind=oracle") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !etlerr.Is(err, etlerr.KindConfig) {
		t.Fatalf("unknown kind should be a config error: %v", err)
	}
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	f := func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil }
	Register("fake-dup", f)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	Register("fake-dup", f)
}
