// Package listing extracts expected releases from scraped listing text.
//
// Listing pages mix "1979 – Sheik Yerbouti" lines with table headers, column
// labels and page widgets. Extraction is best effort: anything that does not
// look like a year–title line is skipped without error.
package listing

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"zappavault/internal/config"
)

// Record is one expected release. SourceKey is the identity reported back to
// callers and never changes after extraction.
type Record struct {
	Year      string `json:"year,omitempty"`
	Title     string `json:"title"`
	SourceKey string `json:"source_key"`
}

// NewRecord builds a record and its source key.
func NewRecord(year, title string) Record {
	key := title
	if year != "" {
		key = year + " – " + title
	}
	return Record{Year: year, Title: title, SourceKey: key}
}

// Stats counts what happened to each input line.
type Stats struct {
	Lines      int `json:"lines"`
	Matched    int `json:"matched"`
	Noise      int `json:"noise"`
	TooShort   int `json:"too_short"`
	Duplicates int `json:"duplicates"`
	Extracted  int `json:"extracted"`
}

// minTitleRunes is the shortest title kept; anything at or below it is
// treated as debris.
const minTitleRunes = 2

var (
	releaseLine = regexp.MustCompile(`^(\d{4})\s*[–—-]\s*(.+)$`)
	// Vote and score counters such as "(12)", "(+3)" or "(4.5/5)".
	scoreSuffix = regexp.MustCompile(`\s*\(\s*[+-]?\d+(?:[.,]\d+)?(?:\s*/\s*\d+(?:[.,]\d+)?)?\s*\)\s*$`)
)

// Extractor turns listing text into records.
type Extractor struct {
	noise    map[string]struct{}
	suffixes []string
}

// New builds an extractor from the listing configuration. Empty lists fall
// back to the repository defaults.
func New(cfg config.Listing) *Extractor {
	words := cfg.NoiseWords
	if len(words) == 0 {
		words = config.DefaultNoiseWords()
	}
	suffixes := cfg.RunOnSuffixes
	if len(suffixes) == 0 {
		suffixes = config.DefaultRunOnSuffixes()
	}
	e := &Extractor{noise: make(map[string]struct{}, len(words))}
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			e.noise[word] = struct{}{}
		}
	}
	for _, suffix := range suffixes {
		if suffix = strings.TrimSpace(suffix); suffix != "" {
			e.suffixes = append(e.suffixes, suffix)
		}
	}
	return e
}

// Extract returns the distinct records in first-occurrence order.
func (e *Extractor) Extract(text string) []Record {
	records, _ := e.ExtractWithStats(text)
	return records
}

// ExtractWithStats is Extract plus per-line counters.
//
// Duplicates are detected by exact SourceKey, so the same release spelled
// with different case survives twice.
func (e *Extractor) ExtractWithStats(text string) ([]Record, Stats) {
	var (
		stats   Stats
		records []Record
		seen    = make(map[string]struct{})
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stats.Lines++
		m := releaseLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		stats.Matched++
		title := e.cleanTitle(m[2])
		if _, noisy := e.noise[strings.ToLower(title)]; noisy {
			stats.Noise++
			continue
		}
		if utf8.RuneCountInString(title) <= minTitleRunes {
			stats.TooShort++
			continue
		}
		record := NewRecord(m[1], title)
		if _, dup := seen[record.SourceKey]; dup {
			stats.Duplicates++
			continue
		}
		seen[record.SourceKey] = struct{}{}
		records = append(records, record)
	}
	stats.Extracted = len(records)
	return records, stats
}

func (e *Extractor) cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	for _, suffix := range e.suffixes {
		if len(title) > len(suffix) && strings.HasSuffix(title, suffix) {
			title = strings.TrimSpace(strings.TrimSuffix(title, suffix))
			break
		}
	}
	for {
		stripped := scoreSuffix.ReplaceAllString(title, "")
		if stripped == title {
			break
		}
		title = stripped
	}
	return strings.Join(strings.Fields(title), " ")
}
