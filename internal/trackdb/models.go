package trackdb

import "time"

// Album is one scanned release folder.
type Album struct {
	ID   int64
	Name string
	Path string
}

// Track is one scanned audio file. TrackNumber and DurationSeconds are zero
// when unknown and stored as NULL.
type Track struct {
	ID              int64
	AlbumID         int64
	TrackNumber     int
	Title           string
	DurationSeconds float64
	FilePath        string
	FileName        string
	ScannedAt       time.Time
}

// AlbumReport is an album with its tracks ordered by track number, unknown
// numbers last, then title.
type AlbumReport struct {
	Album
	Tracks []Track
}

// TotalSeconds sums the known track durations.
func (a AlbumReport) TotalSeconds() float64 {
	var total float64
	for _, track := range a.Tracks {
		if track.DurationSeconds > 0 {
			total += track.DurationSeconds
		}
	}
	return total
}

// Counts summarizes the store contents.
type Counts struct {
	Albums         int
	Tracks         int
	TracksWithTime int
	TotalSeconds   float64
}
