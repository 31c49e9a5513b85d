package matching

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier identifies the strategy that produced a match.
type Tier int

const (
	TierNone Tier = iota
	TierExactKey
	TierNormalizedExact
	TierSubstring
	TierWordOverlap
	TierFilenameSuffix
)

var tierNames = map[Tier]string{
	TierNone:            "none",
	TierExactKey:        "exact_key",
	TierNormalizedExact: "normalized_exact",
	TierSubstring:       "substring",
	TierWordOverlap:     "word_overlap",
	TierFilenameSuffix:  "filename_suffix",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Fuzzy reports whether the tier accepts candidates that are not equal to
// the query after normalization.
func (t Tier) Fuzzy() bool {
	return t == TierSubstring || t == TierWordOverlap || t == TierFilenameSuffix
}

// MarshalJSON encodes the tier by name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a tier name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseTier(name)
	if !ok {
		return fmt.Errorf("unknown match tier %q", name)
	}
	*t = parsed
	return nil
}

// ParseTier resolves a tier name as produced by String.
func ParseTier(name string) (Tier, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for tier, candidate := range tierNames {
		if candidate == name {
			return tier, true
		}
	}
	return TierNone, false
}
