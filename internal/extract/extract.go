// Package extract turns line-delimited JSON dump files into typed records.
package extract

import (
	"context"
	"os"

	"sparkify/internal/etlerr"
	"sparkify/internal/model"
	pjson "sparkify/internal/parser/json"
)

// SongMetadata reads every file in order and returns their records
// concatenated. The first malformed line fails the whole call.
func SongMetadata(ctx context.Context, files []string) ([]model.SongMetadata, error) {
	var out []model.SongMetadata
	err := eachRow(ctx, files, func(path string, row *pjson.Row) error {
		s, err := model.ParseSongMetadata(row.Fields)
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ActivityEvents reads every file in order and returns their events
// concatenated, each tagged with its source file and line.
func ActivityEvents(ctx context.Context, files []string) ([]model.ActivityEvent, error) {
	var out []model.ActivityEvent
	err := eachRow(ctx, files, func(path string, row *pjson.Row) error {
		e, err := model.ParseActivityEvent(row.Fields)
		if err != nil {
			return err
		}
		e.Source = path
		e.Line = row.Line
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func eachRow(ctx context.Context, files []string, fn func(path string, row *pjson.Row) error) error {
	for _, path := range files {
		if err := streamFile(ctx, path, fn); err != nil {
			return err
		}
	}
	return nil
}

func streamFile(ctx context.Context, path string, fn func(path string, row *pjson.Row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return etlerr.IO("open", path, err)
	}
	defer f.Close()

	err = pjson.StreamJSONRows(ctx, f, func(row *pjson.Row) error {
		if err := fn(path, row); err != nil {
			return etlerr.WithLocation(err, path, row.Line)
		}
		return nil
	})
	if err != nil {
		return etlerr.WithLocation(err, path, 0)
	}
	return nil
}
