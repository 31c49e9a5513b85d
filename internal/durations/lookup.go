package durations

import (
	"strings"

	"zappavault/internal/catalog"
	"zappavault/internal/matching"
	"zappavault/internal/normalize"
)

// Lookup is the outcome of resolving one track path. Tier is TierNone and
// DurationMs is 0 when nothing matched.
type Lookup struct {
	Path       string        `json:"path"`
	Key        string        `json:"key,omitempty"`
	DurationMs int64         `json:"duration_ms"`
	Tier       matching.Tier `json:"tier"`
}

// Found reports whether a positive duration was resolved.
func (l Lookup) Found() bool {
	return l.DurationMs > 0
}

// Resolve finds the duration for trackPath. The exact canonical key wins,
// then its lowercase form, then the first index key (in index order) whose
// final segment equals the track's file name ignoring case.
func Resolve(trackPath string, index *catalog.DurationIndex, paths normalize.PathNormalizer) Lookup {
	result := Lookup{Path: trackPath}
	if index.Len() == 0 || strings.TrimSpace(trackPath) == "" {
		return result
	}
	key := paths.Normalize(trackPath)
	if ms, ok := index.Get(key); ok && ms > 0 {
		return resolved(result, key, ms, matching.TierExactKey)
	}
	lower := strings.ToLower(key)
	if ms, ok := index.Get(lower); ok && ms > 0 {
		return resolved(result, lower, ms, matching.TierNormalizedExact)
	}
	name := normalize.FileName(key)
	if name == "" {
		return result
	}
	index.Range(func(candidate string, ms int64) bool {
		if ms > 0 && strings.EqualFold(normalize.FileName(candidate), name) {
			result = resolved(result, candidate, ms, matching.TierFilenameSuffix)
			return false
		}
		return true
	})
	return result
}

// FindDuration returns the duration in milliseconds for trackPath, or 0.
func FindDuration(trackPath string, index *catalog.DurationIndex, paths normalize.PathNormalizer) int64 {
	return Resolve(trackPath, index, paths).DurationMs
}

func resolved(result Lookup, key string, ms int64, tier matching.Tier) Lookup {
	result.Key = key
	result.DurationMs = ms
	result.Tier = tier
	return result
}
