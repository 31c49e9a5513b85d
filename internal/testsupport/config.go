package testsupport

import (
	"path/filepath"
	"testing"

	"zappavault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Every path field is absolute so the result can be used without loading.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Database = filepath.Join(base, "data", "zappa_tracks.db")
	cfgVal.Paths.LibraryJSON = filepath.Join(base, "data", "library.generated.json")
	cfgVal.Paths.DurationsJSON = filepath.Join(base, "data", "track_durations.json")
	cfgVal.Dropbox.LibraryRoot = "/Apps/ZappaVault/ZappaLibrary"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDropboxCredentials fills the Dropbox app credentials.
func WithDropboxCredentials(key, secret, refreshToken string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dropbox.AppKey = key
		b.cfg.Dropbox.AppSecret = secret
		b.cfg.Dropbox.RefreshToken = refreshToken
	}
}

// WithoutDelays zeroes the link pacing so tests run fast.
func WithoutDelays() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dropbox.RequestDelayMs = 0
		b.cfg.Dropbox.BatchDelayMs = 0
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
