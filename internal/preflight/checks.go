package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"zappavault/internal/config"
	"zappavault/internal/library"
	"zappavault/internal/services"
	"zappavault/internal/trackdb"
)

// CheckDirectoryAccess verifies that the directory exists and that this
// process has the access in mode, a mask of unix.R_OK, unix.W_OK and
// unix.X_OK.
func CheckDirectoryAccess(name, path string, mode uint32) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	access := "read ok"
	if mode&unix.W_OK != 0 {
		access = "read/write ok"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, access)}
}

// CheckTrackDatabase opens an existing track database and reports its
// contents. A missing file fails without being created.
func CheckTrackDatabase(ctx context.Context, path string) Result {
	const name = "Track database"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (missing; run `zappavault durations scan`)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	store, err := trackdb.OpenPath(path)
	if err != nil {
		if errors.Is(err, trackdb.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (schema mismatch; delete it and rescan)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	counts, err := store.Counts(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d albums, %d tracks, %d with durations",
		counts.Albums, counts.Tracks, counts.TracksWithTime)}
}

// CheckLibraryFile parses the generated library JSON and summarizes it.
func CheckLibraryFile(path string) Result {
	const name = "Library file"

	snap, err := library.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d albums, %d tracks, durations %s, links %s",
		len(snap.Albums), trackCount(snap), yesNo(snap.HasDurations), yesNo(snap.HasLinks))}
}

// CheckDropbox verifies the app credentials are configured and, when auth
// is provided, that they can obtain an access token.
func CheckDropbox(ctx context.Context, cfg *config.Config, auth Authenticator) Result {
	const name = "Dropbox"

	if err := cfg.RequireDropboxCredentials(); err != nil {
		return Result{Name: name, Detail: "credentials missing"}
	}
	if auth == nil {
		return Result{Name: name, Passed: true, Detail: "credentials configured (not verified)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := auth.CheckAuth(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAuthError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "token refresh ok"}
}

func summarizeAuthError(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return "credentials rejected (check app key, secret and refresh token)"
	case errors.Is(err, context.DeadlineExceeded):
		return "token refresh timed out"
	default:
		msg := strings.TrimSpace(err.Error())
		if len(msg) > 120 {
			msg = msg[:120] + "..."
		}
		return "token refresh failed: " + msg
	}
}

func trackCount(snap *library.Snapshot) int {
	n := 0
	for _, album := range snap.Albums {
		n += len(album.Tracks)
	}
	return n
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
