package durations

import (
	"log/slog"
	"time"

	"zappavault/internal/catalog"
	"zappavault/internal/library"
	"zappavault/internal/logging"
	"zappavault/internal/matching"
	"zappavault/internal/normalize"
)

// MergeStats summarizes one merge run.
type MergeStats struct {
	Tracks     int                   `json:"tracks"`
	Kept       int                   `json:"kept"`
	Updated    int                   `json:"updated"`
	Unresolved int                   `json:"unresolved"`
	ByTier     map[matching.Tier]int `json:"-"`
	// Missing lists the tracks that still have no duration, as canonical
	// paths relative to the library root.
	Missing         []string `json:"missing,omitempty"`
	TotalDurationMs int64    `json:"total_duration_ms"`
}

// Changed reports whether the merge modified any track.
func (s MergeStats) Changed() bool {
	return s.Updated > 0
}

// Merger fills missing track durations from a duration index.
type Merger struct {
	paths  normalize.PathNormalizer
	now    func() time.Time
	logger *slog.Logger
}

// Option customises a Merger.
type Option func(*Merger)

// WithClock overrides the clock used for generatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Merger) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger attaches a logger for per-track decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) {
		m.logger = logging.NewComponentLogger(logger, "durations")
	}
}

// NewMerger builds a merger that canonicalizes track paths with paths.
func NewMerger(paths normalize.PathNormalizer, opts ...Option) *Merger {
	m := &Merger{
		paths:  paths,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Merge updates snap in place. Tracks that already carry a positive
// duration are left alone, and a lookup miss never overwrites a value.
// Album and library totals are recomputed from positive track durations.
// generatedAt is refreshed only when a track changed.
func (m *Merger) Merge(snap *library.Snapshot, index *catalog.DurationIndex) MergeStats {
	stats := MergeStats{ByTier: make(map[matching.Tier]int)}
	if snap == nil {
		return stats
	}
	for ai := range snap.Albums {
		album := &snap.Albums[ai]
		for ti := range album.Tracks {
			track := &album.Tracks[ti]
			stats.Tracks++
			if track.DurationMs > 0 {
				stats.Kept++
				continue
			}
			lookup := Resolve(track.FilePath, index, m.paths)
			if !lookup.Found() {
				stats.Unresolved++
				stats.Missing = append(stats.Missing, m.paths.Relative(m.paths.Normalize(track.FilePath)))
				m.logger.Debug("no duration for track",
					logging.String("album", album.Title),
					logging.String("path", track.FilePath))
				continue
			}
			track.DurationMs = lookup.DurationMs
			stats.Updated++
			stats.ByTier[lookup.Tier]++
			m.logger.Debug("track duration resolved",
				logging.Args(append(logging.DecisionAttrs("duration_lookup", lookup.Tier.String(), lookup.Key),
					logging.String("path", track.FilePath),
					logging.Int64("duration_ms", lookup.DurationMs))...)...)
		}
	}
	snap.Recount()
	if stats.Changed() {
		snap.GeneratedAt = m.now().UTC().Format(time.RFC3339)
	}
	stats.TotalDurationMs = snap.TotalDurationMs
	return stats
}
