package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"zappavault/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(ctx), newConfigValidateCommand(ctx))
	return cmd
}

// configTarget picks the file config init writes: --path, then the global
// --config flag, then the per-user default.
func configTarget(ctx *commandContext, pathFlag string) (string, error) {
	target := strings.TrimSpace(pathFlag)
	if target == "" && ctx.configFlag != nil {
		target = strings.TrimSpace(*ctx.configFlag)
	}
	if target == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(target)
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var (
		pathFlag  string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(ctx, pathFlag)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			_, statErr := os.Stat(target)
			switch {
			case statErr == nil && !overwrite:
				return fmt.Errorf("%s already exists (pass --overwrite to replace it)", target)
			case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
				return fmt.Errorf("check config path: %w", statErr)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Next: set paths.library_dir, then dropbox.app_key, app_secret and refresh_token")
			fmt.Fprintln(out, "(or DROPBOX_APP_KEY, DROPBOX_APP_SECRET, DROPBOX_REFRESH_TOKEN) before running links generate.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Where to write the file (default: --config or ~/.config/zappavault/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

type configSummary struct {
	Path          string   `json:"path"`
	Exists        bool     `json:"exists"`
	LibraryDir    string   `json:"library_dir"`
	Database      string   `json:"database"`
	LibraryJSON   string   `json:"library_json"`
	LibraryRoot   string   `json:"library_root"`
	BatchSize     int      `json:"batch_size"`
	Extensions    []string `json:"extensions"`
	NoiseWords    int      `json:"noise_words"`
	DropboxReady  bool     `json:"dropbox_credentials"`
	LogLevel      string   `json:"log_level"`
	RetentionDays int      `json:"retention_days"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and show the effective settings",
		// Loads explicitly so a broken file is reported here rather than by
		// the persistent pre-run.
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var flagPath string
			if ctx.configFlag != nil {
				flagPath = *ctx.configFlag
			}
			cfg, path, exists, err := config.Load(strings.TrimSpace(flagPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			summary := configSummary{
				Path:          path,
				Exists:        exists,
				LibraryDir:    cfg.Paths.LibraryDir,
				Database:      cfg.Paths.Database,
				LibraryJSON:   cfg.Paths.LibraryJSON,
				LibraryRoot:   cfg.Dropbox.LibraryRoot,
				BatchSize:     cfg.Dropbox.BatchSize,
				Extensions:    cfg.Scanner.Extensions,
				NoiseWords:    len(cfg.Listing.NoiseWords),
				DropboxReady:  cfg.RequireDropboxCredentials() == nil,
				LogLevel:      cfg.Logging.Level,
				RetentionDays: cfg.Logging.RetentionDays,
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			source := summary.Path
			if !summary.Exists {
				source += " (not found; defaults in use)"
			}
			fmt.Fprintf(out, "Config path: %s\n", source)
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, [][]string{
				{"Library dir", summary.LibraryDir},
				{"Database", summary.Database},
				{"Library JSON", summary.LibraryJSON},
				{"Dropbox library root", summary.LibraryRoot},
				{"Link batch size", strconv.Itoa(summary.BatchSize)},
				{"Audio extensions", strings.Join(summary.Extensions, " ")},
				{"Listing noise words", strconv.Itoa(summary.NoiseWords)},
				{"Log level", summary.LogLevel},
				{"Log retention (days)", strconv.Itoa(summary.RetentionDays)},
			}, []columnAlignment{alignLeft, alignLeft}))
			fmt.Fprintf(out, "Dropbox credentials: %s\n", yesNo(summary.DropboxReady))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
