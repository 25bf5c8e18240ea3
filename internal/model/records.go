// Package model holds the typed input records and the star-schema entities
// derived from them.
package model

import (
	"fmt"

	pjson "sparkify/internal/parser/json"
)

// SongMetadata is one song release with denormalized artist fields, as found
// in the song_data dump.
type SongMetadata struct {
	SongID          string
	Title           string
	ArtistID        string
	Year            int64
	Duration        float64
	ArtistName      string
	ArtistLocation  *string
	ArtistLatitude  *float64
	ArtistLongitude *float64
	NumSongs        *int64
}

// ParseSongMetadata builds a SongMetadata from a decoded object.
//
// song_id, title, artist_id, year, duration and artist_name must be present
// and non-null. artist_location, artist_latitude and artist_longitude may be
// null or absent; an empty location is treated as null. year and duration
// must be non-negative.
func ParseSongMetadata(o pjson.Object) (SongMetadata, error) {
	var (
		s   SongMetadata
		err error
	)
	if s.SongID, err = o.String("song_id"); err != nil {
		return s, err
	}
	if s.Title, err = o.String("title"); err != nil {
		return s, err
	}
	if s.ArtistID, err = o.String("artist_id"); err != nil {
		return s, err
	}
	if s.Year, err = o.Int("year"); err != nil {
		return s, err
	}
	if s.Duration, err = o.Float("duration"); err != nil {
		return s, err
	}
	if s.ArtistName, err = o.String("artist_name"); err != nil {
		return s, err
	}
	if s.ArtistLocation, err = o.OptString("artist_location"); err != nil {
		return s, err
	}
	if s.ArtistLocation != nil && *s.ArtistLocation == "" {
		s.ArtistLocation = nil
	}
	if s.ArtistLatitude, err = o.OptFloat("artist_latitude"); err != nil {
		return s, err
	}
	if s.ArtistLongitude, err = o.OptFloat("artist_longitude"); err != nil {
		return s, err
	}
	if s.NumSongs, err = o.OptInt("num_songs"); err != nil {
		return s, err
	}

	if s.Year < 0 {
		return s, fieldError("year", fmt.Errorf("negative year %d", s.Year))
	}
	if s.Duration < 0 {
		return s, fieldError("duration", fmt.Errorf("negative duration %v", s.Duration))
	}
	return s, nil
}

// ActivityEvent is one user-app interaction from the log_data dump.
//
// Only Page and TS are guaranteed; every other field may be null or absent on
// events that are not track plays (e.g. logged-out navigation). Source and
// Line locate the record for error reporting.
type ActivityEvent struct {
	Page      string
	TS        int64
	UserID    *int64
	FirstName *string
	LastName  *string
	Gender    *string
	Level     *string
	Song      *string
	Length    *float64
	SessionID *int64
	UserAgent *string

	Artist        *string
	Auth          *string
	ItemInSession *int64
	Location      *string
	Method        *string
	Status        *int64
	Registration  *float64

	Source string
	Line   int
}

// ParseActivityEvent builds an ActivityEvent from a decoded object.
func ParseActivityEvent(o pjson.Object) (ActivityEvent, error) {
	var (
		e   ActivityEvent
		err error
	)
	if e.Page, err = o.String("page"); err != nil {
		return e, err
	}
	if e.TS, err = o.Int("ts"); err != nil {
		return e, err
	}

	strs := []struct {
		dst  **string
		name string
	}{
		{&e.FirstName, "firstName"},
		{&e.LastName, "lastName"},
		{&e.Gender, "gender"},
		{&e.Level, "level"},
		{&e.Song, "song"},
		{&e.UserAgent, "userAgent"},
		{&e.Artist, "artist"},
		{&e.Auth, "auth"},
		{&e.Location, "location"},
		{&e.Method, "method"},
	}
	for _, f := range strs {
		if *f.dst, err = o.OptString(f.name); err != nil {
			return e, err
		}
	}

	ints := []struct {
		dst  **int64
		name string
	}{
		{&e.UserID, "userId"},
		{&e.SessionID, "sessionId"},
		{&e.ItemInSession, "itemInSession"},
		{&e.Status, "status"},
	}
	for _, f := range ints {
		if *f.dst, err = o.OptInt(f.name); err != nil {
			return e, err
		}
	}

	if e.Length, err = o.OptFloat("length"); err != nil {
		return e, err
	}
	if e.Registration, err = o.OptFloat("registration"); err != nil {
		return e, err
	}
	return e, nil
}
