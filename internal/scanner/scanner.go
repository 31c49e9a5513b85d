package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"zappavault/internal/catalog"
	"zappavault/internal/config"
	"zappavault/internal/logging"
	"zappavault/internal/services"
	"zappavault/internal/trackdb"
)

// Store is the part of the track database the scanner writes to.
type Store interface {
	EnsureAlbum(ctx context.Context, name, path string) (int64, error)
	HasTrack(ctx context.Context, filePath string) (bool, error)
	InsertTrack(ctx context.Context, track trackdb.Track) (int64, error)
}

// Stats summarizes one scan.
type Stats struct {
	Albums       int           `json:"albums"`
	EmptyAlbums  int           `json:"empty_albums"`
	Files        int           `json:"files"`
	Inserted     int           `json:"inserted"`
	Skipped      int           `json:"skipped"`
	NoDuration   int           `json:"no_duration"`
	TotalSeconds float64       `json:"total_seconds"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Scanner records audio files from a library directory.
type Scanner struct {
	store      Store
	prober     Prober
	extensions map[string]struct{}
	skipDirs   map[string]struct{}
	logger     *slog.Logger
}

// Option customises a Scanner.
type Option func(*Scanner)

// WithProber replaces the audiometa prober.
func WithProber(p Prober) Option {
	return func(s *Scanner) {
		if p != nil {
			s.prober = p
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logging.NewComponentLogger(logger, "scanner")
	}
}

// New builds a scanner. Empty extension or skip lists fall back to defaults.
func New(cfg config.Scanner, store Store, opts ...Option) *Scanner {
	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = config.DefaultAudioExtensions()
	}
	skipDirs := cfg.SkipDirs
	if len(skipDirs) == 0 {
		skipDirs = config.DefaultSkipDirs()
	}
	s := &Scanner{
		store:      store,
		prober:     AudioMetaProber{},
		extensions: make(map[string]struct{}, len(extensions)),
		skipDirs:   make(map[string]struct{}, len(skipDirs)),
		logger:     logging.NewNop(),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extensions[ext] = struct{}{}
	}
	for _, dir := range skipDirs {
		if dir = strings.ToLower(strings.TrimSpace(dir)); dir != "" {
			s.skipDirs[dir] = struct{}{}
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Scan walks every album folder under libraryDir. Probe failures are
// collected in failures and the file is still recorded without a duration.
// Cancelling ctx stops the scan between files.
func (s *Scanner) Scan(ctx context.Context, libraryDir string, failures *services.Failures) (Stats, error) {
	started := time.Now()
	var stats Stats
	if s.store == nil {
		return stats, services.Wrap(services.ErrConfiguration, "scanner", "scan", "track store is not configured", nil)
	}
	albums, err := catalog.ReadDirectory(libraryDir)
	if err != nil {
		return stats, services.Wrap(services.ErrConfiguration, "scanner", "read library", libraryDir, err)
	}
	s.logger.Info("library scan started",
		logging.String("library_dir", libraryDir),
		logging.Int("albums", len(albums)))

	for _, name := range albums {
		if _, skip := s.skipDirs[strings.ToLower(name)]; skip {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Albums++
		if err := s.scanAlbum(ctx, filepath.Join(libraryDir, name), name, &stats, failures); err != nil {
			return stats, err
		}
	}
	stats.Elapsed = time.Since(started)
	s.logger.Info("library scan complete",
		logging.Int("albums", stats.Albums),
		logging.Int("files", stats.Files),
		logging.Int("inserted", stats.Inserted),
		logging.Int("skipped", stats.Skipped),
		logging.Int("no_duration", stats.NoDuration),
		logging.Duration("elapsed", stats.Elapsed))
	return stats, nil
}

func (s *Scanner) scanAlbum(ctx context.Context, dir, name string, stats *Stats, failures *services.Failures) error {
	files, err := s.audioFiles(dir)
	if err != nil {
		failures.Add(name, services.Wrap(services.ErrExternal, "scanner", "walk album", dir, err))
		return nil
	}
	if len(files) == 0 {
		stats.EmptyAlbums++
		s.logger.Debug("album has no audio files", logging.String("album", name))
		return nil
	}
	albumID, err := s.store.EnsureAlbum(ctx, name, dir)
	if err != nil {
		return fmt.Errorf("album %q: %w", name, err)
	}

	var albumSeconds float64
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Files++
		exists, err := s.store.HasTrack(ctx, path)
		if err != nil {
			return err
		}
		if exists {
			stats.Skipped++
			continue
		}
		track := s.describe(ctx, albumID, path, failures)
		if _, err := s.store.InsertTrack(ctx, track); err != nil {
			return fmt.Errorf("track %q: %w", path, err)
		}
		stats.Inserted++
		if track.DurationSeconds > 0 {
			albumSeconds += track.DurationSeconds
		} else {
			stats.NoDuration++
		}
	}
	stats.TotalSeconds += albumSeconds
	s.logger.Info("album scanned",
		logging.String("album", name),
		logging.Int("files", len(files)),
		logging.String("duration", FormatSeconds(albumSeconds)))
	return nil
}

func (s *Scanner) describe(ctx context.Context, albumID int64, path string, failures *services.Failures) trackdb.Track {
	fileName := filepath.Base(path)
	title, number := ParseFileName(fileName)
	track := trackdb.Track{AlbumID: albumID, FilePath: path, FileName: fileName, Title: title, TrackNumber: number}

	probe, err := s.prober.Probe(ctx, path)
	if err != nil {
		failures.Add(path, services.Wrap(services.ErrExternal, "scanner", "probe", fileName, err))
		logging.WarnWithContext(s.logger, "audio probe failed", "probe_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file is a readable audio file"),
			logging.String(logging.FieldImpact, "track recorded without a duration"))
		return track
	}
	if t := strings.TrimSpace(probe.Title); t != "" {
		track.Title = t
		if probe.TrackNumber > 0 {
			track.TrackNumber = probe.TrackNumber
		}
	}
	if probe.Duration > 0 {
		track.DurationSeconds = probe.Duration.Seconds()
	}
	s.logger.Debug("track probed",
		logging.String("path", path),
		logging.Int("track_number", track.TrackNumber),
		logging.Float64("duration_seconds", track.DurationSeconds))
	return track
}

func (s *Scanner) audioFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if _, skip := s.skipDirs[strings.ToLower(name)]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := s.extensions[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return nil, err
	}
	return files, nil
}
