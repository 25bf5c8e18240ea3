package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"sparkify/internal/model"
)

// IDStrategy selects how songplay_id is assigned.
type IDStrategy string

const (
	// IDContent derives a UUIDv5 from the row's identifying columns and its
	// occurrence number, so re-deriving the same input gives the same ids.
	IDContent IDStrategy = "content"
	// IDPositional uses the 0-based row index of the joined output.
	IDPositional IDStrategy = "positional"
)

// ParseIDStrategy accepts "content", "positional" or empty (content).
func ParseIDStrategy(s string) (IDStrategy, error) {
	switch IDStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", IDContent:
		return IDContent, nil
	case IDPositional:
		return IDPositional, nil
	default:
		return "", fmt.Errorf("unknown songplay_id strategy %q (want content|positional)", s)
	}
}

var songplayNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("sparkify.songplays"))

// Facts is the joined fact table plus the number of plays that matched no
// song, artist or time row.
type Facts struct {
	Rows    []model.Songplay
	Dropped int
}

type songKey struct {
	title    string
	duration float64
}

// Songplays joins plays to songs on (song, length) == (title, duration) with
// exact float equality, then to artists on artist_id and to time on ts.
//
// Joins are inner: a play with no match in any of them produces no row. A play
// matching several songs produces one row per song, in song order.
func Songplays(plays []model.Play, songs []model.Song, artists []model.Artist, times []model.TimeRow, ids IDStrategy) Facts {
	bySong := make(map[songKey][]model.Song, len(songs))
	for _, s := range songs {
		k := songKey{title: s.Title, duration: s.Duration}
		bySong[k] = append(bySong[k], s)
	}
	byArtist := make(map[string]model.Artist, len(artists))
	for _, a := range artists {
		if _, ok := byArtist[a.ArtistID]; !ok {
			byArtist[a.ArtistID] = a
		}
	}
	byTS := make(map[int64]model.TimeRow, len(times))
	for _, t := range times {
		if _, ok := byTS[t.TS]; !ok {
			byTS[t.TS] = t
		}
	}

	var f Facts
	occurrences := make(map[string]int)
	for _, p := range plays {
		tr, ok := byTS[p.TS]
		if !ok {
			f.Dropped++
			continue
		}
		matched := false
		for _, s := range bySong[songKey{title: p.Song, duration: p.Length}] {
			a, ok := byArtist[s.ArtistID]
			if !ok {
				continue
			}
			matched = true
			row := model.Songplay{
				TS:        p.TS,
				StartTime: tr.StartTime,
				UserID:    p.UserID,
				Level:     p.Level,
				SongID:    s.SongID,
				ArtistID:  s.ArtistID,
				Location:  a.Location,
				SessionID: p.SessionID,
				UserAgent: p.UserAgent,
			}
			row.SongplayID = assignID(ids, row, len(f.Rows), occurrences)
			f.Rows = append(f.Rows, row)
		}
		if !matched {
			f.Dropped++
		}
	}
	return f
}

func assignID(ids IDStrategy, row model.Songplay, index int, occurrences map[string]int) string {
	if ids == IDPositional {
		return strconv.Itoa(index)
	}
	base := fmt.Sprintf("%d|%d|%d|%s|%s", row.TS, row.UserID, row.SessionID, row.SongID, row.ArtistID)
	n := occurrences[base]
	occurrences[base] = n + 1
	return uuid.NewSHA1(songplayNamespace, []byte(base+"|"+strconv.Itoa(n))).String()
}
