package links

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"zappavault/internal/dropbox"
	"zappavault/internal/library"
	"zappavault/internal/logging"
	"zappavault/internal/services"
)

// DefaultBatchSize is the number of tracks per batch when none is configured.
const DefaultBatchSize = 10

// Issuer returns a permanent link for a recorded file path.
type Issuer interface {
	GetOrCreateLink(ctx context.Context, path string) (string, error)
}

// Options tune pacing and reporting.
type Options struct {
	BatchSize    int
	RequestDelay time.Duration
	BatchDelay   time.Duration
	Logger       *slog.Logger
	// Now stamps generatedAt; defaults to time.Now.
	Now func() time.Time
}

// Stats counts what happened to tracks and covers.
type Stats struct {
	Tracks         int `json:"tracks"`
	TracksLinked   int `json:"tracks_linked"`
	TracksExisting int `json:"tracks_existing"`
	TracksNoPath   int `json:"tracks_no_path"`
	TracksFailed   int `json:"tracks_failed"`
	Batches        int `json:"batches"`
	Covers         int `json:"covers"`
	CoversLinked   int `json:"covers_linked"`
	CoversExisting int `json:"covers_existing"`
	CoversRepaired int `json:"covers_repaired"`
	CoversSkipped  int `json:"covers_skipped"`
	CoversFailed   int `json:"covers_failed"`
	// Retriable counts failures a later run may clear, such as rate limits.
	Retriable int `json:"retriable"`
}

// Changed reports whether the run modified the snapshot.
func (s Stats) Changed() bool {
	return s.TracksLinked > 0 || s.CoversLinked > 0 || s.CoversRepaired > 0
}

// Runner issues links for a snapshot.
type Runner struct {
	issuer     Issuer
	batchSize  int
	batchDelay time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner builds a runner around issuer.
func NewRunner(issuer Issuer, opts Options) *Runner {
	r := &Runner{
		issuer:     issuer,
		batchSize:  opts.BatchSize,
		batchDelay: opts.BatchDelay,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		logger:     logging.NewComponentLogger(opts.Logger, "links"),
		now:        opts.Now,
	}
	if r.batchSize <= 0 {
		r.batchSize = DefaultBatchSize
	}
	if opts.RequestDelay > 0 {
		r.limiter = rate.NewLimiter(rate.Every(opts.RequestDelay), 1)
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

type trackRef struct {
	album *library.Album
	track *library.Track
}

// Run fills missing track links and converts cover paths into links. It
// returns early with ctx.Err() when cancelled; links issued until then stay
// in snap and the derived flags are refreshed either way.
func (r *Runner) Run(ctx context.Context, snap *library.Snapshot, failures *services.Failures) (Stats, error) {
	var stats Stats
	if snap == nil {
		return stats, nil
	}
	defer r.finish(snap, &stats)

	var refs []trackRef
	for ai := range snap.Albums {
		album := &snap.Albums[ai]
		for ti := range album.Tracks {
			refs = append(refs, trackRef{album: album, track: &album.Tracks[ti]})
		}
	}
	stats.Tracks = len(refs)
	totalBatches := (len(refs) + r.batchSize - 1) / r.batchSize

	for start := 0; start < len(refs); start += r.batchSize {
		end := min(start+r.batchSize, len(refs))
		stats.Batches++
		r.logger.Debug("processing batch",
			logging.Int("batch", stats.Batches),
			logging.Int("batches", totalBatches),
			logging.Int("tracks", end-start))
		for _, ref := range refs[start:end] {
			if err := r.linkTrack(ctx, ref, &stats, failures); err != nil {
				return stats, err
			}
		}
		if end < len(refs) {
			if err := sleep(ctx, r.batchDelay); err != nil {
				return stats, err
			}
		}
	}

	for ai := range snap.Albums {
		if err := r.linkCover(ctx, &snap.Albums[ai], &stats, failures); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (r *Runner) linkTrack(ctx context.Context, ref trackRef, stats *Stats, failures *services.Failures) error {
	track := ref.track
	if track.StreamingURL != "" {
		stats.TracksExisting++
		return nil
	}
	path := strings.TrimSpace(track.FilePath)
	if path == "" {
		stats.TracksNoPath++
		return nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	link, err := r.issuer.GetOrCreateLink(services.WithItemKey(ctx, path), path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.TracksFailed++
		failures.Add(path, err)
		logging.WarnWithContext(r.logger, "track link failed", "link_failed",
			logging.String("album", ref.album.Title),
			logging.String("track", track.Title),
			logging.String(logging.FieldItemKey, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, failureHint(err, stats, "check the file exists under the configured library root")),
			logging.String(logging.FieldImpact, "track has no streaming link"))
		return nil
	}
	track.StreamingURL = link
	track.DownloadURL = link
	stats.TracksLinked++
	r.logger.Debug("track linked",
		logging.String("album", ref.album.Title),
		logging.Int("track_number", track.TrackNumber),
		logging.String("track", track.Title))
	return nil
}

func (r *Runner) linkCover(ctx context.Context, album *library.Album, stats *Stats, failures *services.Failures) error {
	stats.Covers++
	cover := strings.TrimSpace(album.CoverURL)
	if library.IsRemoteURL(cover) {
		stats.CoversExisting++
		if repaired, changed := dropbox.RepairCoverURL(cover); changed {
			album.CoverURL = repaired
			stats.CoversRepaired++
		}
		return nil
	}
	if cover == "" || !strings.HasPrefix(cover, "/") {
		stats.CoversSkipped++
		return nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	link, err := r.issuer.GetOrCreateLink(services.WithItemKey(ctx, cover), cover)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.CoversFailed++
		failures.Add(cover, err)
		logging.WarnWithContext(r.logger, "cover link failed", "link_failed",
			logging.String("album", album.Title),
			logging.String(logging.FieldItemKey, cover),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, failureHint(err, stats, "check the cover path in the library file")),
			logging.String(logging.FieldImpact, "album shows no cover art"))
		return nil
	}
	album.CoverURL = link
	stats.CoversLinked++
	return nil
}

func (r *Runner) finish(snap *library.Snapshot, stats *Stats) {
	snap.Recount()
	if stats.Changed() {
		snap.GeneratedAt = r.now().UTC().Format(time.RFC3339)
	}
	r.logger.Info("link generation complete",
		logging.Int("tracks", stats.Tracks),
		logging.Int("linked", stats.TracksLinked),
		logging.Int("existing", stats.TracksExisting),
		logging.Int("failed", stats.TracksFailed),
		logging.Int("covers_linked", stats.CoversLinked),
		logging.Int("covers_repaired", stats.CoversRepaired),
		logging.Int("covers_failed", stats.CoversFailed))
}

// failureHint counts retriable failures and picks the operator hint for err.
func failureHint(err error, stats *Stats, permanent string) string {
	if !services.Retriable(err) {
		return permanent
	}
	stats.Retriable++
	return "dropbox is throttling or unavailable; rerun later"
}

func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
