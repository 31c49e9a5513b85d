package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"zappavault/internal/catalog"
	"zappavault/internal/normalize"
)

const (
	// MinSubstringLength is the rune length the shorter normalized title
	// must exceed before containment counts as a match. It keeps "Hot" from
	// matching "Hot Rats" and "The Hot Rocks".
	MinSubstringLength = 5
	// MinOverlapWords is the fewest shared words a word-overlap match needs.
	MinOverlapWords = 2
	// OverlapQueryRatio is the share of query words that must appear in the
	// candidate for a word-overlap match.
	OverlapQueryRatio = 0.7
)

// Result is the outcome of matching one query. Entry is nil exactly when
// Tier is TierNone.
type Result struct {
	Query string         `json:"query"`
	Entry *catalog.Entry `json:"entry,omitempty"`
	Tier  Tier           `json:"tier"`
	Score float64        `json:"score"`
}

// Matched reports whether the query resolved to a catalog entry.
func (r Result) Matched() bool {
	return r.Entry != nil
}

// Matcher resolves queries against a catalog.
type Matcher struct {
	minSubstringLength int
	minOverlapWords    int
	overlapQueryRatio  float64
}

// Option customises a Matcher.
type Option func(*Matcher)

// WithMinSubstringLength overrides MinSubstringLength.
func WithMinSubstringLength(n int) Option {
	return func(m *Matcher) {
		if n >= 0 {
			m.minSubstringLength = n
		}
	}
}

// WithOverlap overrides MinOverlapWords and OverlapQueryRatio.
func WithOverlap(minWords int, ratio float64) Option {
	return func(m *Matcher) {
		if minWords > 0 {
			m.minOverlapWords = minWords
		}
		if ratio > 0 && ratio <= 1 {
			m.overlapQueryRatio = ratio
		}
	}
}

// New returns a matcher using the package thresholds unless overridden.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		minSubstringLength: MinSubstringLength,
		minOverlapWords:    MinOverlapWords,
		overlapQueryRatio:  OverlapQueryRatio,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

type candidate struct {
	entry catalog.Entry
	key   string
}

// Match returns the best entry for query. When several candidates satisfy
// the winning tier the first one in catalog order is returned.
func (m *Matcher) Match(query string, cat *catalog.Catalog) Result {
	result := Result{Query: query}
	entries := cat.Entries()
	if len(entries) == 0 {
		return result
	}

	if entry, ok := cat.Get(query); ok {
		return found(result, entry, TierExactKey, 1.0)
	}

	queryKey := normalize.Title(query)
	if queryKey == "" {
		return result
	}
	candidates := make([]candidate, len(entries))
	for i, entry := range entries {
		candidates[i] = candidate{entry: entry, key: normalize.Title(entry.DisplayTitle)}
	}

	for _, c := range candidates {
		if c.key == queryKey {
			return found(result, c.entry, TierNormalizedExact, 1.0)
		}
	}

	queryLen := utf8.RuneCountInString(queryKey)
	for _, c := range candidates {
		if score, ok := m.substring(queryKey, queryLen, c.key); ok {
			return found(result, c.entry, TierSubstring, score)
		}
	}

	queryWords := normalize.Words(queryKey)
	for _, c := range candidates {
		if score, ok := m.wordOverlap(queryWords, normalize.Words(c.key)); ok {
			return found(result, c.entry, TierWordOverlap, score)
		}
	}
	return result
}

func (m *Matcher) substring(queryKey string, queryLen int, candidateKey string) (float64, bool) {
	if candidateKey == "" {
		return 0, false
	}
	if !containsEither(queryKey, candidateKey) {
		return 0, false
	}
	candidateLen := utf8.RuneCountInString(candidateKey)
	shorter, longer := queryLen, candidateLen
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if shorter <= m.minSubstringLength {
		return 0, false
	}
	return float64(shorter) / float64(longer), true
}

func (m *Matcher) wordOverlap(queryWords, candidateWords []string) (float64, bool) {
	if len(queryWords) == 0 || len(candidateWords) == 0 {
		return 0, false
	}
	inCandidate := make(map[string]struct{}, len(candidateWords))
	for _, w := range candidateWords {
		inCandidate[w] = struct{}{}
	}
	shared := 0
	for _, w := range queryWords {
		if _, ok := inCandidate[w]; ok {
			shared++
		}
	}
	if shared < m.minOverlapWords {
		return 0, false
	}
	if float64(shared) < m.overlapQueryRatio*float64(len(queryWords)) {
		return 0, false
	}
	union := len(queryWords) + len(candidateWords) - shared
	return float64(shared) / float64(union), true
}

// Closest returns the catalog entry whose normalized title is most similar
// to query by Jaro-Winkler similarity. It is a review hint only and plays no
// part in Match.
func (m *Matcher) Closest(query string, cat *catalog.Catalog) (catalog.Entry, float64, bool) {
	queryKey := normalize.Title(query)
	if queryKey == "" {
		return catalog.Entry{}, 0, false
	}
	var (
		best      catalog.Entry
		bestScore float64
		seen      bool
	)
	for _, entry := range cat.Entries() {
		key := normalize.Title(entry.DisplayTitle)
		if key == "" {
			continue
		}
		sim, err := edlib.StringsSimilarity(queryKey, key, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if !seen || float64(sim) > bestScore {
			best, bestScore, seen = entry, float64(sim), true
		}
	}
	return best, bestScore, seen
}

func found(result Result, entry catalog.Entry, tier Tier, score float64) Result {
	e := entry
	result.Entry = &e
	result.Tier = tier
	result.Score = score
	return result
}

func containsEither(a, b string) bool {
	if len(a) < len(b) {
		a, b = b, a
	}
	return len(b) > 0 && strings.Contains(a, b)
}
