package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

const (
	songLine = `{"num_songs": 1, "artist_id": "AR1", "artist_latitude": 33.4, "artist_longitude": -112.0, "artist_location": "Phoenix, AZ", "artist_name": "Des'ree", "song_id": "SO1", "title": "You Gotta Be", "duration": 246.30812, "year": 1994}`
	otherSong = `{"num_songs": 1, "artist_id": "AR2", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Nobody", "song_id": "SO2", "title": "Never Played", "duration": 100.0, "year": 0}`

	homeLine    = `{"artist":null,"auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":0,"lastName":"Summers","length":null,"level":"free","location":"Phoenix-Mesa-Scottsdale, AZ","method":"GET","page":"Home","registration":1540344794796.0,"sessionId":139,"song":null,"status":200,"ts":1541106106000,"userAgent":"Mozilla/5.0","userId":"8"}`
	playLine    = `{"artist":"Des'ree","auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":1,"lastName":"Summers","length":246.30812,"level":"free","location":"Phoenix-Mesa-Scottsdale, AZ","method":"PUT","page":"NextSong","registration":1540344794796.0,"sessionId":139,"song":"You Gotta Be","status":200,"ts":1541106106796,"userAgent":"Mozilla/5.0","userId":"8"}`
	unmatchLine = `{"artist":"Unknown","auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":2,"lastName":"Summers","length":180.0,"level":"free","location":"Phoenix-Mesa-Scottsdale, AZ","method":"PUT","page":"NextSong","registration":1540344794796.0,"sessionId":139,"song":"Not In Catalog","status":200,"ts":1541106352796,"userAgent":"Mozilla/5.0","userId":"8"}`
)

// dataset writes a song tree and a log tree laid out like the real dumps
// (nested directories, one JSON object per line) and returns both roots.
func dataset(t *testing.T, logBody string) (songDir, logDir string) {
	t.Helper()
	root := t.TempDir()
	songDir = filepath.Join(root, "song_data")
	logDir = filepath.Join(root, "log_data")

	write(t, filepath.Join(songDir, "A", "A", "A", "TRAAAAA.json"), songLine+"\n")
	write(t, filepath.Join(songDir, "A", "B", "C", "TRAABBB.json"), otherSong+"\n")
	write(t, filepath.Join(songDir, "README.txt"), "not json")
	write(t, filepath.Join(logDir, "2018", "11", "2018-11-01-events.json"), logBody)
	return songDir, logDir
}

func write(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func defaultLog() string {
	return homeLine + "\n" + playLine + "\n" + unmatchLine + "\n"
}
