package reconcile

import (
	"log/slog"

	"zappavault/internal/catalog"
	"zappavault/internal/config"
	"zappavault/internal/listing"
	"zappavault/internal/logging"
	"zappavault/internal/matching"
)

// HintThreshold is the Jaro-Winkler similarity a closest catalog title needs
// before it is offered as a hint for a missing release.
const HintThreshold = 0.8

// Status is the partition a release lands in.
type Status string

const (
	StatusFound     Status = "found"
	StatusMissing   Status = "missing"
	StatusAmbiguous Status = "ambiguous"
)

// Deps are the collaborators of a reconciliation run. Nil fields fall back to
// defaults.
type Deps struct {
	Extractor *listing.Extractor
	Matcher   *matching.Matcher
	Logger    *slog.Logger
}

// Hint names the closest catalog title for a release that did not match.
type Hint struct {
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// Outcome is the per-release result.
type Outcome struct {
	Record listing.Record  `json:"record"`
	Match  matching.Result `json:"match"`
	Status Status          `json:"status"`
	Hint   *Hint           `json:"hint,omitempty"`
}

// Report is the result of one reconciliation run. Found, Missing and
// Ambiguous hold source keys in extraction order and never overlap.
type Report struct {
	Found       []string       `json:"found"`
	Missing     []string       `json:"missing"`
	Ambiguous   []string       `json:"ambiguous"`
	Orphans     []string       `json:"orphans"`
	Results     []Outcome      `json:"results"`
	Listing     listing.Stats  `json:"listing"`
	CatalogSize int            `json:"catalog_size"`
	Collisions  int            `json:"collisions"`
	ByTier      map[string]int `json:"by_tier"`
}

// Reconcile matches the releases in listingText against the catalog built
// from names. A release matched through a fuzzy tier is ambiguous when
// another release in the same run resolved to the same catalog entry.
func Reconcile(listingText string, names []string, deps Deps) Report {
	deps = deps.withDefaults()
	logger := logging.NewComponentLogger(deps.Logger, "reconcile")

	records, stats := deps.Extractor.ExtractWithStats(listingText)
	cat, orphans := catalog.LoadFromDirectory(names)

	report := Report{
		Found:       []string{},
		Missing:     []string{},
		Ambiguous:   []string{},
		Orphans:     orphans,
		Results:     make([]Outcome, 0, len(records)),
		Listing:     stats,
		CatalogSize: cat.Len(),
		Collisions:  cat.Collisions(),
		ByTier:      make(map[string]int),
	}
	if report.Orphans == nil {
		report.Orphans = []string{}
	}
	if len(orphans) > 0 {
		logging.WarnWithContext(logger, "folder names could not be parsed", "catalog_orphans",
			logging.Int("count", len(orphans)),
			logging.String(logging.FieldErrorHint, "rename the folders to \"#N Title (Date)\" or review them manually"),
			logging.String(logging.FieldImpact, "orphaned folders never match a release"))
	}

	claims := make(map[string]int)
	for _, record := range records {
		result := deps.Matcher.Match(record.Title, cat)
		if result.Matched() {
			claims[result.Entry.DisplayTitle]++
		}
		report.Results = append(report.Results, Outcome{Record: record, Match: result})
	}

	for i := range report.Results {
		outcome := &report.Results[i]
		result := outcome.Match
		report.ByTier[result.Tier.String()]++
		switch {
		case !result.Matched():
			outcome.Status = StatusMissing
			outcome.Hint = closestHint(deps.Matcher, outcome.Record.Title, cat)
			report.Missing = append(report.Missing, outcome.Record.SourceKey)
		case result.Tier.Fuzzy() && claims[result.Entry.DisplayTitle] > 1:
			outcome.Status = StatusAmbiguous
			report.Ambiguous = append(report.Ambiguous, outcome.Record.SourceKey)
		default:
			outcome.Status = StatusFound
			report.Found = append(report.Found, outcome.Record.SourceKey)
		}
		logger.Debug("release reconciled",
			logging.Args(append(logging.DecisionAttrs("release_match", string(outcome.Status), result.Tier.String()),
				logging.String(logging.FieldItemKey, outcome.Record.SourceKey),
				logging.Float64("score", result.Score))...)...)
	}

	logger.Info("reconciliation complete",
		logging.Int("releases", len(records)),
		logging.Int("found", len(report.Found)),
		logging.Int("missing", len(report.Missing)),
		logging.Int("ambiguous", len(report.Ambiguous)),
		logging.Int("catalog", report.CatalogSize),
		logging.Int("orphans", len(report.Orphans)))
	return report
}

func closestHint(m *matching.Matcher, title string, cat *catalog.Catalog) *Hint {
	entry, similarity, ok := m.Closest(title, cat)
	if !ok || similarity < HintThreshold {
		return nil
	}
	return &Hint{Title: entry.DisplayTitle, Source: entry.SourceIdentifier, Similarity: similarity}
}

func (d Deps) withDefaults() Deps {
	if d.Extractor == nil {
		d.Extractor = listing.New(config.Default().Listing)
	}
	if d.Matcher == nil {
		d.Matcher = matching.New()
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	return d
}
