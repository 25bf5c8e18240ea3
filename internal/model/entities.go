package model

import "time"

// Play is a NextSong event with the fields every downstream table needs
// resolved to non-null values, plus calendar fields derived from its
// timestamp.
type Play struct {
	Event ActivityEvent

	UserID    int64
	FirstName string
	LastName  string
	Gender    string
	Level     string
	Song      string
	Length    float64
	SessionID int64
	UserAgent *string

	// DateTime is the event time in UTC truncated to whole seconds; TS is the
	// same instant in epoch milliseconds.
	DateTime  time.Time
	TS        int64
	StartTime string
	Hour      int
	Day       int
	Week      int
	Month     int
	Year      int
	Weekday   int
}

// Artist is a row of the artists dimension.
type Artist struct {
	ArtistID  string
	Name      string
	Location  *string
	Latitude  *float64
	Longitude *float64
}

// Values returns the row in artists column order.
func (a Artist) Values() []any {
	return []any{a.ArtistID, a.Name, nullString(a.Location), nullFloat(a.Latitude), nullFloat(a.Longitude)}
}

// Song is a row of the songs dimension.
type Song struct {
	SongID   string
	Title    string
	ArtistID string
	Year     int64
	Duration float64
}

// Values returns the row in songs column order.
func (s Song) Values() []any {
	return []any{s.SongID, s.Title, s.ArtistID, s.Year, s.Duration}
}

// TimeRow is a row of the time dimension.
type TimeRow struct {
	TS        int64
	StartTime string
	Hour      int
	Day       int
	Week      int
	Month     int
	Year      int
	Weekday   int
}

// Values returns the row in time column order.
func (t TimeRow) Values() []any {
	return []any{
		t.TS, t.StartTime,
		int64(t.Hour), int64(t.Day), int64(t.Week), int64(t.Month), int64(t.Year), int64(t.Weekday),
	}
}

// User is a row of the users dimension. A user appears once per subscription
// level observed.
type User struct {
	UserID    int64
	FirstName string
	LastName  string
	Gender    string
	Level     string
}

// Values returns the row in users column order.
func (u User) Values() []any {
	return []any{u.UserID, u.FirstName, u.LastName, u.Gender, u.Level}
}

// Songplay is a row of the songplays fact table.
type Songplay struct {
	SongplayID string
	TS         int64
	StartTime  string
	UserID     int64
	Level      string
	SongID     string
	ArtistID   string
	Location   *string
	SessionID  int64
	UserAgent  *string
}

// Values returns the row in songplays column order.
func (s Songplay) Values() []any {
	return []any{
		s.SongplayID, s.TS, s.StartTime, s.UserID, s.Level,
		s.SongID, s.ArtistID, nullString(s.Location), s.SessionID, nullString(s.UserAgent),
	}
}

// nullString and nullFloat turn nil pointers into untyped nil so every driver
// binds SQL NULL.
func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
