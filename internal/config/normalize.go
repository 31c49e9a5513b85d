package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeListing()
	c.normalizeDropbox()
	c.normalizeScanner()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(strings.TrimSpace(c.Paths.LibraryDir)); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	files := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.database", &c.Paths.Database, defaultDatabaseName},
		{"paths.library_json", &c.Paths.LibraryJSON, defaultLibraryJSONName},
		{"paths.durations_json", &c.Paths.DurationsJSON, defaultDurationsName},
	}
	for _, f := range files {
		value := strings.TrimSpace(*f.value)
		if value == "" {
			value = filepath.Join(c.Paths.DataDir, f.fallback)
		}
		if *f.value, err = expandPath(value); err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeListing() {
	c.Listing.NoiseWords = cleanList(c.Listing.NoiseWords, false)
	if len(c.Listing.NoiseWords) == 0 {
		c.Listing.NoiseWords = DefaultNoiseWords()
	}
	c.Listing.RunOnSuffixes = cleanList(c.Listing.RunOnSuffixes, false)
	if len(c.Listing.RunOnSuffixes) == 0 {
		c.Listing.RunOnSuffixes = DefaultRunOnSuffixes()
	}
}

func (c *Config) normalizeDropbox() {
	lookup := func(value *string, env string) {
		*value = strings.TrimSpace(*value)
		if *value != "" {
			return
		}
		if envValue, ok := os.LookupEnv(env); ok {
			*value = strings.TrimSpace(envValue)
		}
	}
	lookup(&c.Dropbox.AppKey, "DROPBOX_APP_KEY")
	lookup(&c.Dropbox.AppSecret, "DROPBOX_APP_SECRET")
	lookup(&c.Dropbox.RefreshToken, "DROPBOX_REFRESH_TOKEN")

	if value, ok := os.LookupEnv("DROPBOX_LIBRARY_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Dropbox.LibraryRoot = value
	}
	root := strings.ReplaceAll(strings.TrimSpace(c.Dropbox.LibraryRoot), `\`, "/")
	if root == "" {
		root = defaultLibraryRoot
	}
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	if root != "/" {
		root = strings.TrimRight(root, "/")
	}
	c.Dropbox.LibraryRoot = root

	c.Dropbox.RootMarker = strings.TrimSpace(c.Dropbox.RootMarker)
	if c.Dropbox.BatchSize <= 0 {
		c.Dropbox.BatchSize = defaultBatchSize
	}
	if c.Dropbox.TimeoutSeconds <= 0 {
		c.Dropbox.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeScanner() {
	exts := cleanList(c.Scanner.Extensions, true)
	for i, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			exts[i] = "." + ext
		}
	}
	if len(exts) == 0 {
		exts = DefaultAudioExtensions()
	}
	c.Scanner.Extensions = exts
	c.Scanner.SkipDirs = cleanList(c.Scanner.SkipDirs, true)
	if len(c.Scanner.SkipDirs) == 0 {
		c.Scanner.SkipDirs = DefaultSkipDirs()
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// cleanList trims entries, drops blanks and duplicates, and optionally
// lowercases.
func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
