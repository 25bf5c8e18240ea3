package transform

import "sparkify/internal/model"

// Artists projects song metadata onto the artists dimension, keeping the first
// record seen for each artist_id.
func Artists(songs []model.SongMetadata) []model.Artist {
	seen := make(map[string]struct{}, len(songs))
	out := make([]model.Artist, 0, len(songs))
	for _, s := range songs {
		if _, ok := seen[s.ArtistID]; ok {
			continue
		}
		seen[s.ArtistID] = struct{}{}
		out = append(out, model.Artist{
			ArtistID:  s.ArtistID,
			Name:      s.ArtistName,
			Location:  s.ArtistLocation,
			Latitude:  s.ArtistLatitude,
			Longitude: s.ArtistLongitude,
		})
	}
	return out
}

// Songs projects song metadata onto the songs dimension, keeping the first
// record seen for each song_id.
func Songs(songs []model.SongMetadata) []model.Song {
	seen := make(map[string]struct{}, len(songs))
	out := make([]model.Song, 0, len(songs))
	for _, s := range songs {
		if _, ok := seen[s.SongID]; ok {
			continue
		}
		seen[s.SongID] = struct{}{}
		out = append(out, model.Song{
			SongID:   s.SongID,
			Title:    s.Title,
			ArtistID: s.ArtistID,
			Year:     s.Year,
			Duration: s.Duration,
		})
	}
	return out
}

// Times projects plays onto the time dimension. Rows are deduplicated as a
// whole; since every field derives from the truncated timestamp this is one
// row per distinct second.
func Times(plays []model.Play) []model.TimeRow {
	seen := make(map[model.TimeRow]struct{}, len(plays))
	out := make([]model.TimeRow, 0)
	for _, p := range plays {
		r := model.TimeRow{
			TS:        p.TS,
			StartTime: p.StartTime,
			Hour:      p.Hour,
			Day:       p.Day,
			Week:      p.Week,
			Month:     p.Month,
			Year:      p.Year,
			Weekday:   p.Weekday,
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Users projects plays onto the users dimension, one row per distinct
// (user_id, first_name, last_name, gender, level). A level change yields a new
// row for the same user.
func Users(plays []model.Play) []model.User {
	seen := make(map[model.User]struct{})
	out := make([]model.User, 0)
	for _, p := range plays {
		u := model.User{
			UserID:    p.UserID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Gender:    p.Gender,
			Level:     p.Level,
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
