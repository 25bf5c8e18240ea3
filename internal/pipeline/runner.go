package pipeline

import (
	"context"
	"fmt"

	"sparkify/internal/config"
	"sparkify/internal/storage"
)

// Runner opens the configured repository and runs one Pipeline over it.
type Runner struct {
	// NewRepository is the storage factory seam; production uses storage.New,
	// which requires the backend packages to be imported (internal/storage/all).
	NewRepository func(ctx context.Context, cfg storage.Config) (storage.Repository, error)
	Logger        Logger
}

// NewDefaultRunner returns a Runner backed by the storage registry.
func NewDefaultRunner(logger Logger) *Runner {
	return &Runner{NewRepository: storage.New, Logger: logger}
}

// OptionsFromConfig maps the run configuration onto pipeline Options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		SongDataDir:  cfg.SongDataDir,
		LogDataDir:   cfg.LogDataDir,
		FilePattern:  cfg.FilePattern,
		IDStrategy:   cfg.IDStrategy(),
		BatchSize:    cfg.BatchSize,
		SkipExisting: cfg.SkipExisting,
	}
}

// Run validates cfg, opens the repository, runs the pipeline and closes the
// repository again.
func (r *Runner) Run(ctx context.Context, cfg config.Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if r.NewRepository == nil {
		return Result{}, fmt.Errorf("runner: NewRepository is required")
	}

	repo, err := r.NewRepository(ctx, storage.Config{Kind: cfg.StorageKind, DSN: cfg.ConnString()})
	if err != nil {
		return Result{}, fmt.Errorf("open %s storage: %w", cfg.StorageKind, err)
	}
	defer repo.Close()

	p := &Pipeline{Repo: repo, Logger: r.Logger, Options: OptionsFromConfig(cfg)}
	return p.Run(ctx)
}
