package preflight

import (
	"context"

	"golang.org/x/sys/unix"

	"zappavault/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Authenticator proves remote credentials work.
type Authenticator interface {
	CheckAuth(ctx context.Context) error
}

// RunAll executes every check for the given config. auth may be nil to
// skip contacting Dropbox.
func RunAll(ctx context.Context, cfg *config.Config, auth Authenticator) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir, unix.R_OK|unix.X_OK))
	}
	results = append(results,
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir, unix.R_OK|unix.W_OK|unix.X_OK),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, unix.R_OK|unix.W_OK|unix.X_OK),
		CheckTrackDatabase(ctx, cfg.Paths.Database),
		CheckLibraryFile(cfg.Paths.LibraryJSON),
		CheckDropbox(ctx, cfg, auth),
	)
	return results
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
