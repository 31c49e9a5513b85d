package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"zappavault/internal/normalize"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	LibraryDir    string `toml:"library_dir"`
	DataDir       string `toml:"data_dir"`
	LogDir        string `toml:"log_dir"`
	Database      string `toml:"database"`
	LibraryJSON   string `toml:"library_json"`
	DurationsJSON string `toml:"durations_json"`
}

// Listing contains the vocabulary used when extracting release lines from
// scraped listing text.
type Listing struct {
	// NoiseWords are titles rejected outright (section headers, column labels).
	NoiseWords []string `toml:"noise_words"`
	// RunOnSuffixes are page widgets that scraping glues to the end of a title.
	RunOnSuffixes []string `toml:"run_on_suffixes"`
}

// Dropbox contains credentials and pacing for shared link issuance.
type Dropbox struct {
	AppKey         string `toml:"app_key"`
	AppSecret      string `toml:"app_secret"`
	RefreshToken   string `toml:"refresh_token"`
	LibraryRoot    string `toml:"library_root"`
	RootMarker     string `toml:"root_marker"`
	BatchSize      int    `toml:"batch_size"`
	RequestDelayMs int    `toml:"request_delay_ms"`
	BatchDelayMs   int    `toml:"batch_delay_ms"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scanner contains settings for the local duration scan.
type Scanner struct {
	Extensions []string `toml:"extensions"`
	SkipDirs   []string `toml:"skip_dirs"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for zappavault.
//
// Configuration sections:
//   - Paths: library folder, working data and output files
//   - Listing: noise vocabulary for listing extraction
//   - Dropbox: link issuance credentials and pacing
//   - Scanner: audio extensions and skipped folders
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Listing Listing `toml:"listing"`
	Dropbox Dropbox `toml:"dropbox"`
	Scanner Scanner `toml:"scanner"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of ~/.config/zappavault/config.toml.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the config at path, or searches the default locations when path
// is empty. A missing file is not an error: defaults and environment
// overrides apply. It returns the config, the path consulted, and whether
// that file existed.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// resolveConfigPath honours an explicit path as given. Otherwise the user
// config wins over ./zappavault.toml, and the user path is reported when
// neither exists so config init has somewhere to write.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	return true, nil
}

// EnsureDirectories creates the working directories commands write into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequestDelay returns the pause between individual link requests.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Dropbox.RequestDelayMs) * time.Millisecond
}

// BatchDelay returns the pause between link request batches.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Dropbox.BatchDelayMs) * time.Millisecond
}

// DropboxTimeout returns the per-request HTTP timeout.
func (c *Config) DropboxTimeout() time.Duration {
	return time.Duration(c.Dropbox.TimeoutSeconds) * time.Second
}

// PathNormalizer returns the normalizer for recorded track paths.
func (c *Config) PathNormalizer() normalize.PathNormalizer {
	return normalize.NewPathNormalizer(c.Dropbox.RootMarker, c.Dropbox.LibraryRoot)
}

// RequireDropboxCredentials reports whether link issuance can authenticate.
func (c *Config) RequireDropboxCredentials() error {
	var missing []string
	if strings.TrimSpace(c.Dropbox.AppKey) == "" {
		missing = append(missing, "dropbox.app_key (DROPBOX_APP_KEY)")
	}
	if strings.TrimSpace(c.Dropbox.AppSecret) == "" {
		missing = append(missing, "dropbox.app_secret (DROPBOX_APP_SECRET)")
	}
	if strings.TrimSpace(c.Dropbox.RefreshToken) == "" {
		missing = append(missing, "dropbox.refresh_token (DROPBOX_REFRESH_TOKEN)")
	}
	if len(missing) == 0 {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("missing %s. Set the env vars or edit %s (create with 'zappavault config init')", strings.Join(missing, ", "), defaultPath)
}

// ExpandPath resolves a leading ~ or ~/ to the home directory and makes the
// result absolute. Empty stays empty.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value[1:], "/"))
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
