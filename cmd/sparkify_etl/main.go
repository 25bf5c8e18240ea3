// Command sparkify_etl loads the song and activity-log dumps into the
// star-schema database.
//
// Usage:
//
//	sparkify_etl [-config sparkify.yaml] [-env-file .env] [-validate] [-v]
//
// Every setting can also come from the environment (DB_HOST, STORAGE_KIND,
// SONG_DATA_DIR, ...). Exit status is 0 on success, 1 when the run fails and 2
// for usage or configuration errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"sparkify/internal/config"
	"sparkify/internal/etlerr"
	"sparkify/internal/metrics"
	"sparkify/internal/metrics/datadog"
	"sparkify/internal/pipeline"

	// register all backends with the storage factory; storage_kind picks one.
	_ "sparkify/internal/storage/all"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type runner interface {
	Run(ctx context.Context, cfg config.Config) (pipeline.Result, error)
}

// appDeps are the side-effecting seams of runMain.
type appDeps struct {
	loadConfig  func(file, dotenv string) (config.Config, error)
	newRunner   func(logger pipeline.Logger) runner
	initMetrics func(ctx context.Context, cfg config.Config, log *logrus.Entry) (func(), error)
}

func defaultDeps() appDeps {
	return appDeps{
		loadConfig: config.Load,
		newRunner: func(logger pipeline.Logger) runner {
			return pipeline.NewDefaultRunner(logger)
		},
		initMetrics: initMetrics,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultDeps())
	stop()
	os.Exit(code)
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, deps appDeps) int {
	fs := flag.NewFlagSet("sparkify_etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath  string
		envFile  string
		validate bool
		verbose  bool
	)
	fs.StringVar(&cfgPath, "config", "", "optional config file (yaml, json, toml, ...)")
	fs.StringVar(&envFile, "env-file", ".env", "optional dotenv file; empty disables it")
	fs.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&verbose, "v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "usage: sparkify_etl [-config file] [-env-file file] [-validate] [-v]; unexpected argument %q\n", fs.Arg(0))
		return exitUsage
	}

	cfg, err := deps.loadConfig(cfgPath, envFile)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return exitUsage
	}
	if validate {
		fmt.Fprintf(stdout, "config ok: storage=%s dsn=%s songs=%s logs=%s\n",
			cfg.StorageKind, cfg.RedactedConnString(), cfg.SongDataDir, cfg.LogDataDir)
		return exitOK
	}

	logger := newLogger(stderr, cfg.LogLevel, verbose)
	log := logger.WithField("job", cfg.Job)

	cleanup, err := deps.initMetrics(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "init metrics: %v\n", err)
		return exitUsage
	}
	defer cleanup()

	log.WithFields(logrus.Fields{
		"storage": cfg.StorageKind,
		"dsn":     cfg.RedactedConnString(),
		"songs":   cfg.SongDataDir,
		"logs":    cfg.LogDataDir,
	}).Debug("pipeline: starting")

	start := time.Now()
	res, err := deps.newRunner(log).Run(ctx, cfg)
	if err != nil {
		kind := etlerr.KindOf(err)
		log.WithField("kind", kind.String()).WithError(err).Error("run failed")
		fmt.Fprintf(stderr, "run: %v\n", err)
		if kind == etlerr.KindConfig {
			return exitUsage
		}
		return exitFailure
	}

	log.WithFields(logrus.Fields{
		"song_files":    res.SongFiles,
		"log_files":     res.LogFiles,
		"songplays":     res.Inserted["songplays"],
		"dropped_plays": res.DroppedPlays,
		"duration":      time.Since(start).Truncate(time.Millisecond).String(),
	}).Info("completed")
	fmt.Fprintln(stdout, "ok")
	return exitOK
}

func newLogger(w io.Writer, level string, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	l.SetLevel(lvl)
	return l
}

// initMetrics installs the configured metrics backend and returns the
// cleanup that flushes it.
func initMetrics(ctx context.Context, cfg config.Config, log *logrus.Entry) (func(), error) {
	switch cfg.MetricsBackend {
	case config.MetricsDatadog:
		tags := datadog.ParseTagsCSV(cfg.MetricsTags)
		// The final flush must still go out after an interrupt.
		b, err := datadog.NewBackend(context.WithoutCancel(ctx), datadog.Options{
			JobName:    cfg.Job,
			Tags:       tags,
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		log.WithField("tags", tags).Info("metrics: datadog enabled")
		metrics.SetBackend(b)
		return func() {
			// Close stops the flush loop and submits what is left.
			if err := b.Close(); err != nil {
				log.WithError(err).Warn("metrics: datadog close/flush error")
			}
			metrics.SetBackend(nil)
		}, nil

	default:
		log.Debug("metrics: disabled")
		return func() {}, nil
	}
}
