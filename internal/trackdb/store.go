package trackdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"zappavault/internal/catalog"
	"zappavault/internal/config"
)

// Store manages album and track persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open connects to the database configured in paths.database, creating the
// schema on first use.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.Database)
}

// OpenPath connects to the database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureAlbum returns the id of the album called name, inserting it when it
// does not exist yet. The stored path of an existing album is left as is.
func (s *Store) EnsureAlbum(ctx context.Context, name, path string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("album name is empty")
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM Albums WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find album: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO Albums (name, path) VALUES (?, ?)`, name, path)
	if err != nil {
		return 0, fmt.Errorf("insert album: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// HasTrack reports whether a track with filePath has been recorded.
func (s *Store) HasTrack(ctx context.Context, filePath string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM Tracks WHERE file_path = ?`, filePath).Scan(&count); err != nil {
		return false, fmt.Errorf("find track: %w", err)
	}
	return count > 0, nil
}

// InsertTrack records a scanned track and returns its id.
func (s *Store) InsertTrack(ctx context.Context, track Track) (int64, error) {
	if track.AlbumID == 0 {
		return 0, errors.New("track album id is required")
	}
	if strings.TrimSpace(track.FilePath) == "" {
		return 0, errors.New("track file path is required")
	}
	if track.FileName == "" {
		track.FileName = filepath.Base(track.FilePath)
	}
	if strings.TrimSpace(track.Title) == "" {
		track.Title = strings.TrimSuffix(track.FileName, filepath.Ext(track.FileName))
	}
	scanned := track.ScannedAt
	if scanned.IsZero() {
		scanned = s.now()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO Tracks (album_id, track_number, title, duration_seconds, file_path, file_name, scanned_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		track.AlbumID,
		nullableInt(track.TrackNumber),
		track.Title,
		nullableSeconds(track.DurationSeconds),
		track.FilePath,
		track.FileName,
		scanned.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert track: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// DurationRows returns every track with a positive duration in insertion
// order.
func (s *Store) DurationRows(ctx context.Context) ([]catalog.DurationRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path, duration_seconds FROM Tracks
         WHERE duration_seconds IS NOT NULL AND duration_seconds > 0
         ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query durations: %w", err)
	}
	defer rows.Close()

	var out []catalog.DurationRow
	for rows.Next() {
		var row catalog.DurationRow
		if err := rows.Scan(&row.Path, &row.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan duration: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AlbumReports returns albums ordered by name with their tracks. Albums with
// no tracks are omitted.
func (s *Store) AlbumReports(ctx context.Context) ([]AlbumReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.path, t.id, t.track_number, t.title, t.duration_seconds, t.file_path, t.file_name, t.scanned_at
         FROM Albums a JOIN Tracks t ON t.album_id = a.id
         ORDER BY a.name, t.track_number NULLS LAST, t.title`)
	if err != nil {
		return nil, fmt.Errorf("query album report: %w", err)
	}
	defer rows.Close()

	var reports []AlbumReport
	for rows.Next() {
		var (
			album   Album
			track   Track
			number  sql.NullInt64
			seconds sql.NullFloat64
			scanned sql.NullString
		)
		if err := rows.Scan(&album.ID, &album.Name, &album.Path, &track.ID, &number, &track.Title,
			&seconds, &track.FilePath, &track.FileName, &scanned); err != nil {
			return nil, fmt.Errorf("scan album report: %w", err)
		}
		track.AlbumID = album.ID
		track.TrackNumber = int(number.Int64)
		track.DurationSeconds = seconds.Float64
		if ts, err := parseTimeString(scanned.String); err == nil {
			track.ScannedAt = ts
		}
		if n := len(reports); n == 0 || reports[n-1].ID != album.ID {
			reports = append(reports, AlbumReport{Album: album})
		}
		last := &reports[len(reports)-1]
		last.Tracks = append(last.Tracks, track)
	}
	return reports, rows.Err()
}

// Counts summarizes the stored albums and tracks.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var (
		counts Counts
		total  sql.NullFloat64
	)
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM Albums`).Scan(&counts.Albums); err != nil {
		return Counts{}, fmt.Errorf("count albums: %w", err)
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
                COUNT(CASE WHEN duration_seconds > 0 THEN 1 END),
                SUM(CASE WHEN duration_seconds > 0 THEN duration_seconds END)
         FROM Tracks`).Scan(&counts.Tracks, &counts.TracksWithTime, &total)
	if err != nil {
		return Counts{}, fmt.Errorf("count tracks: %w", err)
	}
	counts.TotalSeconds = total.Float64
	return counts, nil
}
