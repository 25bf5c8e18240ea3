// Package transform reshapes extracted records into star-schema entities.
//
// Every function is pure: it reads its inputs, never mutates them, and returns
// new slices in input order.
package transform

import (
	"errors"
	"time"

	"sparkify/internal/etlerr"
	"sparkify/internal/model"
)

// PlayPage is the page value of a track-play event.
const PlayPage = "NextSong"

// ErrNoValue is reported for a play field that is absent or null.
var ErrNoValue = errors.New("missing or null value")

// NextSongPlays keeps the track-play events and derives their calendar
// fields from the event time in UTC, truncated to whole seconds.
//
// A retained event missing a field that users or songplays require fails with
// a parse error located at the event's source line.
func NextSongPlays(events []model.ActivityEvent) ([]model.Play, error) {
	var out []model.Play
	for _, e := range events {
		if e.Page != PlayPage {
			continue
		}
		p, err := enrich(e)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func enrich(e model.ActivityEvent) (model.Play, error) {
	p := model.Play{Event: e, UserAgent: e.UserAgent}

	missing := func(field string) error {
		return etlerr.Parse(e.Source, e.Line, field, ErrNoValue)
	}
	if e.UserID == nil {
		return p, missing("userId")
	}
	if e.SessionID == nil {
		return p, missing("sessionId")
	}
	if e.Length == nil {
		return p, missing("length")
	}
	strs := []struct {
		src  *string
		dst  *string
		name string
	}{
		{e.FirstName, &p.FirstName, "firstName"},
		{e.LastName, &p.LastName, "lastName"},
		{e.Gender, &p.Gender, "gender"},
		{e.Level, &p.Level, "level"},
		{e.Song, &p.Song, "song"},
	}
	for _, f := range strs {
		if f.src == nil {
			return p, missing(f.name)
		}
		*f.dst = *f.src
	}
	p.UserID = *e.UserID
	p.SessionID = *e.SessionID
	p.Length = *e.Length

	dt := time.UnixMilli(e.TS).UTC().Truncate(time.Second)
	_, week := dt.ISOWeek()
	p.DateTime = dt
	p.TS = dt.UnixMilli()
	p.StartTime = dt.Format("15:04:05")
	p.Hour = dt.Hour()
	p.Day = dt.Day()
	p.Week = week
	p.Month = int(dt.Month())
	p.Year = dt.Year()
	p.Weekday = (int(dt.Weekday()) + 6) % 7
	return p, nil
}
