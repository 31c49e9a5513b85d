package testsupport

import (
	"context"
	"testing"

	"zappavault/internal/config"
	"zappavault/internal/trackdb"
)

// MustOpenStore opens a trackdb.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *trackdb.Store {
	t.Helper()

	store, err := trackdb.Open(cfg)
	if err != nil {
		t.Fatalf("trackdb.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddTrack records an album (if needed) and one track for tests.
func AddTrack(t testing.TB, store *trackdb.Store, album, filePath string, seconds float64) int64 {
	t.Helper()

	ctx := context.Background()
	albumID, err := store.EnsureAlbum(ctx, album, "/library/"+album)
	if err != nil {
		t.Fatalf("store.EnsureAlbum: %v", err)
	}
	id, err := store.InsertTrack(ctx, trackdb.Track{AlbumID: albumID, FilePath: filePath, DurationSeconds: seconds})
	if err != nil {
		t.Fatalf("store.InsertTrack: %v", err)
	}
	return id
}
