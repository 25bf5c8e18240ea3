// Package pipeline runs the star-schema load: song metadata into artists and
// songs, NextSong events into time and users, then the songplays fact table.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"sparkify/internal/collector"
	"sparkify/internal/extract"
	"sparkify/internal/metrics"
	"sparkify/internal/model"
	"sparkify/internal/schema"
	"sparkify/internal/storage"
	"sparkify/internal/transform"
)

// Logger is the minimal logging interface used by the pipeline.
// *log.Logger and *logrus.Logger both satisfy it.
type Logger interface {
	Printf(format string, v ...any)
}

// Options are the run inputs the pipeline needs from configuration.
type Options struct {
	SongDataDir  string
	LogDataDir   string
	FilePattern  string
	IDStrategy   transform.IDStrategy
	BatchSize    int
	SkipExisting bool
}

// Result summarizes a completed run.
type Result struct {
	SongFiles    int
	LogFiles     int
	SongRecords  int
	Events       int
	Plays        int
	DroppedPlays int

	// Inserted is the number of rows written per table.
	Inserted map[string]int64
}

// Pipeline loads one snapshot of song and log files into Repo.
//
// Steps run strictly in order and the first failure aborts the run; tables
// loaded before it are not rolled back.
type Pipeline struct {
	Repo    storage.Repository
	Logger  Logger
	Options Options
}

type state struct {
	songFiles []string
	logFiles  []string
	meta      []model.SongMetadata
	events    []model.ActivityEvent
	plays     []model.Play
	artists   []model.Artist
	songs     []model.Song
	times     []model.TimeRow
	users     []model.User
}

// Run executes the load and returns its counts.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if p.Repo == nil {
		return Result{}, fmt.Errorf("pipeline: Repo is required")
	}

	res := Result{Inserted: make(map[string]int64, 5)}
	var st state
	loader := &TableLoader{Repo: p.Repo, BatchSize: p.Options.BatchSize, SkipExisting: p.Options.SkipExisting}
	tables := schema.StarSchema()

	load := func(table string, rows [][]any) (string, error) {
		spec, _ := schema.Table(table)
		n, err := loader.Load(ctx, spec, rows)
		res.Inserted[table] = n
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rows=%d inserted=%d", len(rows), n), nil
	}

	steps := []struct {
		name string
		fn   func() (string, error)
	}{
		{"ddl", func() (string, error) {
			return fmt.Sprintf("tables=%d", len(tables)), p.Repo.EnsureTables(ctx, tables)
		}},
		{"collect_song_files", func() (string, error) {
			var err error
			st.songFiles, err = collector.Files(p.Options.SongDataDir, p.Options.FilePattern)
			res.SongFiles = len(st.songFiles)
			return fmt.Sprintf("files=%d", res.SongFiles), err
		}},
		{"extract_songs", func() (string, error) {
			var err error
			st.meta, err = extract.SongMetadata(ctx, st.songFiles)
			res.SongRecords = len(st.meta)
			return fmt.Sprintf("records=%d", res.SongRecords), err
		}},
		{schema.Artists, func() (string, error) {
			st.artists = transform.Artists(st.meta)
			return load(schema.Artists, Rows(st.artists))
		}},
		{schema.Songs, func() (string, error) {
			st.songs = transform.Songs(st.meta)
			return load(schema.Songs, Rows(st.songs))
		}},
		{"collect_log_files", func() (string, error) {
			var err error
			st.logFiles, err = collector.Files(p.Options.LogDataDir, p.Options.FilePattern)
			res.LogFiles = len(st.logFiles)
			return fmt.Sprintf("files=%d", res.LogFiles), err
		}},
		{"extract_events", func() (string, error) {
			var err error
			st.events, err = extract.ActivityEvents(ctx, st.logFiles)
			res.Events = len(st.events)
			return fmt.Sprintf("records=%d", res.Events), err
		}},
		{"filter_plays", func() (string, error) {
			var err error
			st.plays, err = transform.NextSongPlays(st.events)
			res.Plays = len(st.plays)
			return fmt.Sprintf("plays=%d", res.Plays), err
		}},
		{schema.Time, func() (string, error) {
			st.times = transform.Times(st.plays)
			return load(schema.Time, Rows(st.times))
		}},
		{schema.Users, func() (string, error) {
			st.users = transform.Users(st.plays)
			return load(schema.Users, Rows(st.users))
		}},
		{schema.Songplays, func() (string, error) {
			facts := transform.Songplays(st.plays, st.songs, st.artists, st.times, p.Options.IDStrategy)
			res.DroppedPlays = facts.Dropped
			metrics.RecordRecords("songplays_dropped", facts.Dropped)
			detail, err := load(schema.Songplays, Rows(facts.Rows))
			return detail + fmt.Sprintf(" dropped=%d", facts.Dropped), err
		}},
	}

	logf := p.logger()
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start := time.Now()
		detail, err := s.fn()
		metrics.RecordStep(s.name, start, err)
		if err != nil {
			logf("stage=%s error duration=%s err=%v", s.name, durMS(start), err)
			return res, fmt.Errorf("%s: %w", s.name, err)
		}
		logf("stage=%s ok %s duration=%s", s.name, detail, durMS(start))
	}
	return res, nil
}

func (p *Pipeline) logger() func(format string, v ...any) {
	if p.Logger == nil {
		return func(string, ...any) {}
	}
	return p.Logger.Printf
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }
