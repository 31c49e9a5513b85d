package reconcile

import (
	"zappavault/internal/catalog"
	"zappavault/internal/durations"
	"zappavault/internal/library"
	"zappavault/internal/normalize"
)

// AlbumTotal is the duration aggregate of one album after a merge.
type AlbumTotal struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Tracks          int    `json:"tracks"`
	WithDuration    int    `json:"with_duration"`
	TotalDurationMs int64  `json:"total_duration_ms"`
}

// MergeReport describes a duration merge. TracksTimed counts every track
// with a positive duration afterwards, including ones already known.
type MergeReport struct {
	Stats           durations.MergeStats `json:"stats"`
	IndexSize       int                  `json:"index_size"`
	Albums          []AlbumTotal         `json:"albums"`
	TotalDurationMs int64                `json:"total_duration_ms"`
	TracksTimed     int                  `json:"tracks_timed"`
	ByTier          map[string]int       `json:"by_tier"`
}

// MergeDurations builds a duration index from rows and merges it into lib.
// lib is updated in place.
func MergeDurations(lib *library.Snapshot, rows []catalog.DurationRow, paths normalize.PathNormalizer, opts ...durations.Option) MergeReport {
	return MergeIndex(lib, catalog.LoadFromDurationStore(rows, paths), paths, opts...)
}

// MergeIndex merges a prepared duration index into lib.
func MergeIndex(lib *library.Snapshot, index *catalog.DurationIndex, paths normalize.PathNormalizer, opts ...durations.Option) MergeReport {
	stats := durations.NewMerger(paths, opts...).Merge(lib, index)
	report := MergeReport{
		Stats:     stats,
		IndexSize: index.Len(),
		Albums:    AlbumTotals(lib),
		ByTier:    make(map[string]int, len(stats.ByTier)),
	}
	for tier, n := range stats.ByTier {
		report.ByTier[tier.String()] = n
	}
	if lib != nil {
		report.TotalDurationMs = lib.TotalDurationMs
		report.TracksTimed = lib.TracksWithDurations()
	}
	return report
}

// AlbumTotals lists per-album aggregates in library order.
func AlbumTotals(lib *library.Snapshot) []AlbumTotal {
	if lib == nil {
		return []AlbumTotal{}
	}
	out := make([]AlbumTotal, 0, len(lib.Albums))
	for _, album := range lib.Albums {
		total := AlbumTotal{ID: album.ID, Title: album.Title, Tracks: len(album.Tracks)}
		for _, track := range album.Tracks {
			if track.DurationMs > 0 {
				total.WithDuration++
				total.TotalDurationMs += track.DurationMs
			}
		}
		out = append(out, total)
	}
	return out
}
