// Package library reads and writes the generated library snapshot consumed by
// the web player: albums, their tracks, and aggregate durations.
package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"zappavault/internal/fileutil"
)

// Track is one playable file.
type Track struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	TrackNumber  int    `json:"trackNumber"`
	DurationMs   int64  `json:"durationMs"`
	FilePath     string `json:"filePath"`
	StreamingURL string `json:"streamingUrl,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
}

// Album is one release folder.
type Album struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Subtitle        string  `json:"subtitle,omitempty"`
	Year            int     `json:"year,omitempty"`
	CoverURL        string  `json:"coverUrl,omitempty"`
	FolderPath      string  `json:"folderPath,omitempty"`
	TotalDurationMs int64   `json:"totalDurationMs"`
	Tracks          []Track `json:"tracks"`
}

// Snapshot is the whole generated library document.
type Snapshot struct {
	AlbumCount      int     `json:"albumCount"`
	TrackCount      int     `json:"trackCount"`
	Albums          []Album `json:"albums"`
	TotalDurationMs int64   `json:"totalDurationMs"`
	GeneratedAt     string  `json:"generatedAt,omitempty"`
	HasDurations    bool    `json:"hasDurations"`
	HasLinks        bool    `json:"hasLinks"`
	HasCoverLinks   bool    `json:"hasCoverLinks"`
}

// Recount refreshes the album and track counters, the album and library
// duration totals, and the derived flags. Only positive track durations
// count toward a total; an album without any contributes 0.
func (s *Snapshot) Recount() {
	s.AlbumCount = len(s.Albums)
	s.TrackCount = 0
	s.TotalDurationMs = 0
	s.HasDurations = false
	s.HasLinks = false
	s.HasCoverLinks = false
	for i := range s.Albums {
		album := &s.Albums[i]
		if album.Tracks == nil {
			album.Tracks = []Track{}
		}
		album.TotalDurationMs = 0
		for _, track := range album.Tracks {
			if track.DurationMs > 0 {
				album.TotalDurationMs += track.DurationMs
				s.HasDurations = true
			}
			if track.StreamingURL != "" {
				s.HasLinks = true
			}
		}
		s.TrackCount += len(album.Tracks)
		s.TotalDurationMs += album.TotalDurationMs
		if IsRemoteURL(album.CoverURL) {
			s.HasCoverLinks = true
		}
	}
	if s.Albums == nil {
		s.Albums = []Album{}
	}
}

// TracksWithDurations counts tracks carrying a positive duration.
func (s *Snapshot) TracksWithDurations() int {
	n := 0
	for _, album := range s.Albums {
		for _, track := range album.Tracks {
			if track.DurationMs > 0 {
				n++
			}
		}
	}
	return n
}

// IsRemoteURL reports whether value is already an http(s) link rather than
// a storage path.
func IsRemoteURL(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads a snapshot from path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("library file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("read library: %w", err)
	}
	return Decode(data)
}

// Decode parses a snapshot document.
func Decode(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse library: %w", err)
	}
	if snap.Albums == nil {
		snap.Albums = []Album{}
	}
	return &snap, nil
}

// Encode renders the snapshot with two-space indentation and unescaped
// non-ASCII text. Encoding the same snapshot twice yields identical bytes.
func Encode(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode library: %w", err)
	}
	return buf.Bytes(), nil
}

// Differs reports whether encoding snap would change the bytes at path. A
// missing file always differs.
func Differs(path string, snap *Snapshot) (bool, error) {
	data, err := Encode(snap)
	if err != nil {
		return false, err
	}
	current, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read library: %w", err)
	}
	return !bytes.Equal(current, data), nil
}

// Save writes the snapshot atomically.
func Save(path string, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write library: %w", err)
	}
	return nil
}
