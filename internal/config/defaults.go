package config

import "zappavault/internal/normalize"

const (
	defaultConfigPath      = "~/.config/zappavault/config.toml"
	projectConfigName      = "zappavault.toml"
	defaultLibraryDir      = "~/Dropbox/Apps/ZappaVault/ZappaLibrary"
	defaultDataDir         = "~/.local/share/zappavault"
	defaultLogDir          = "~/.local/share/zappavault/logs"
	defaultDatabaseName    = "zappa_tracks.db"
	defaultLibraryJSONName = "library.generated.json"
	defaultDurationsName   = "track_durations.json"
	defaultLibraryRoot     = "/Apps/ZappaVault/ZappaLibrary"
	defaultBatchSize       = 10
	defaultRequestDelayMs  = 100
	defaultBatchDelayMs    = 500
	defaultTimeoutSeconds  = 30
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultRetentionDays   = 30
)

// DefaultNoiseWords lists the section headers and table labels that appear on
// release listing pages next to real year–title lines.
func DefaultNoiseWords() []string {
	return []string{
		"↑",
		"Toggle",
		"Size",
		"Snatches",
		"Seeders",
		"Leechers",
		"Albums",
		"EPs",
		"Soundtracks",
		"Live albums",
		"Compilations",
		"Anthologies",
		"Singles",
		"Bootlegs",
		"Interviews",
		"Mixtapes",
		"DJ Mixes",
		"Concert recordings",
		"Unknowns",
		"Produced By",
		"Compositions",
		"Guest Appearances",
		"Remixes",
	}
}

// DefaultRunOnSuffixes lists widget labels glued to titles by scraping.
func DefaultRunOnSuffixes() []string {
	return []string{"Bookmark"}
}

// DefaultAudioExtensions lists the file extensions the scanner probes.
func DefaultAudioExtensions() []string {
	return []string{".mp3", ".flac", ".wav", ".m4a", ".ogg", ".mp4", ".aac"}
}

// DefaultSkipDirs lists folder names the scanner never descends into.
func DefaultSkipDirs() []string {
	return []string{"cover", "covers"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Listing: Listing{
			NoiseWords:    DefaultNoiseWords(),
			RunOnSuffixes: DefaultRunOnSuffixes(),
		},
		Dropbox: Dropbox{
			LibraryRoot:    defaultLibraryRoot,
			RootMarker:     normalize.DefaultRootMarker,
			BatchSize:      defaultBatchSize,
			RequestDelayMs: defaultRequestDelayMs,
			BatchDelayMs:   defaultBatchDelayMs,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Scanner: Scanner{
			Extensions: DefaultAudioExtensions(),
			SkipDirs:   DefaultSkipDirs(),
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}
