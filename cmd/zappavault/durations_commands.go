package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"zappavault/internal/catalog"
	"zappavault/internal/config"
	"zappavault/internal/durations"
	"zappavault/internal/fileutil"
	"zappavault/internal/library"
	"zappavault/internal/logging"
	"zappavault/internal/reconcile"
	"zappavault/internal/scanner"
	"zappavault/internal/services"
	"zappavault/internal/trackdb"
)

// newProber is swapped in tests to avoid decoding real audio.
var newProber = func() scanner.Prober { return scanner.AudioMetaProber{} }

func newDurationsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "durations",
		Short: "Scan, export and merge track durations",
	}
	cmd.AddCommand(newDurationsScanCommand(ctx))
	cmd.AddCommand(newDurationsExportCommand(ctx))
	cmd.AddCommand(newDurationsMergeCommand(ctx))
	cmd.AddCommand(newDurationsReportCommand(ctx))
	return cmd
}

func newDurationsScanCommand(ctx *commandContext) *cobra.Command {
	var libraryDir string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Record audio files and their durations in the track database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop, logger, err := ctx.runContext(cmd)
			if err != nil {
				return err
			}
			defer stop()

			dir := cfg.Paths.LibraryDir
			if override := strings.TrimSpace(libraryDir); override != "" {
				if dir, err = config.ExpandPath(override); err != nil {
					return fmt.Errorf("resolve library dir: %w", err)
				}
			}

			store, err := trackdb.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var failures services.Failures
			sc := scanner.New(cfg.Scanner, store, scanner.WithProber(newProber()), scanner.WithLogger(logger))
			stats, scanErr := sc.Scan(runCtx, dir, &failures)
			if scanErr != nil && !errors.Is(scanErr, context.Canceled) {
				return scanErr
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, struct {
					Stats    scanner.Stats      `json:"stats"`
					Database string             `json:"database"`
					Failures *services.Failures `json:"failures"`
				}{stats, store.Path(), &failures}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader("Scan", colorize))
				fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, [][]string{
					{"Albums", strconv.Itoa(stats.Albums)},
					{"Empty albums", strconv.Itoa(stats.EmptyAlbums)},
					{"Audio files", strconv.Itoa(stats.Files)},
					{"Inserted", strconv.Itoa(stats.Inserted)},
					{"Already recorded", strconv.Itoa(stats.Skipped)},
					{"Without duration", strconv.Itoa(stats.NoDuration)},
					{"Scanned time", scanner.FormatSeconds(stats.TotalSeconds)},
				}, []columnAlignment{alignLeft, alignRight}))
				fmt.Fprintf(out, "Database: %s\n", store.Path())
				printFailures(out, &failures, colorize)
			}
			if scanErr != nil {
				return scanErr
			}
			return ctx.strictError(logger, &failures)
		},
	}

	cmd.Flags().StringVar(&libraryDir, "library-dir", "", "Library directory to scan instead of paths.library_dir")
	return cmd
}

func newDurationsExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the path to milliseconds index from the track database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop, logger, err := ctx.runContext(cmd)
			if err != nil {
				return err
			}
			defer stop()

			target, err := resolveOutput(output, cfg.Paths.DurationsJSON)
			if err != nil {
				return err
			}
			index, rows, err := indexFromDatabase(runCtx, cfg)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(index, "", "  ")
			if err != nil {
				return fmt.Errorf("encode duration index: %w", err)
			}
			release, err := fileutil.Lock(target)
			if err != nil {
				return err
			}
			defer release() //nolint:errcheck
			if err := fileutil.WriteFileAtomic(target, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write duration index: %w", err)
			}
			logger.Info("duration index exported",
				logging.String("path", target),
				logging.Int("rows", rows),
				logging.Int("keys", index.Len()))

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"path": target, "rows": rows, "keys": index.Len()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d durations (%d keys) to %s\n", rows, index.Len(), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: paths.durations_json)")
	return cmd
}

func newDurationsMergeCommand(ctx *commandContext) *cobra.Command {
	var from string
	var durationsFile string
	var libraryFile string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Fill missing track durations in the library JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop, logger, err := ctx.runContext(cmd)
			if err != nil {
				return err
			}
			defer stop()

			libPath, err := resolveOutput(libraryFile, cfg.Paths.LibraryJSON)
			if err != nil {
				return err
			}

			var index *catalog.DurationIndex
			switch strings.ToLower(strings.TrimSpace(from)) {
			case "db", "database", "":
				index, _, err = indexFromDatabase(runCtx, cfg)
			case "json":
				var path string
				if path, err = resolveOutput(durationsFile, cfg.Paths.DurationsJSON); err == nil {
					index, err = readDurationIndex(path)
				}
			default:
				return fmt.Errorf("unsupported --from %q (expected db or json)", from)
			}
			if err != nil {
				return err
			}

			release, err := fileutil.Lock(libPath)
			if err != nil {
				return err
			}
			defer release() //nolint:errcheck

			snap, err := library.Load(libPath)
			if err != nil {
				return err
			}
			report := reconcile.MergeIndex(snap, index, cfg.PathNormalizer(), durations.WithLogger(logger))
			// Recount can repair stale aggregates without any track changing,
			// so compare encodings rather than merge stats.
			pending, err := library.Differs(libPath, snap)
			if err != nil {
				return err
			}
			saved := false
			if pending && !dryRun {
				if err := library.Save(libPath, snap); err != nil {
					return err
				}
				saved = true
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, struct {
					Path    string                `json:"path"`
					Pending bool                  `json:"pending"`
					Saved   bool                  `json:"saved"`
					Merge   reconcile.MergeReport `json:"merge"`
				}{libPath, pending, saved, report})
			}
			printMergeReport(cmd.OutOrStdout(), libPath, pending, saved, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "db", "Duration source: db or json")
	cmd.Flags().StringVar(&durationsFile, "durations", "", "Duration index file for --from json (default: paths.durations_json)")
	cmd.Flags().StringVar(&libraryFile, "library", "", "Library JSON to update (default: paths.library_json)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	return cmd
}

func newDurationsReportCommand(ctx *commandContext) *cobra.Command {
	var showTracks bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show per-album durations from the track database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop, _, err := ctx.runContext(cmd)
			if err != nil {
				return err
			}
			defer stop()

			store, err := trackdb.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			albums, err := store.AlbumReports(runCtx)
			if err != nil {
				return err
			}
			counts, err := store.Counts(runCtx)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, albumReportsJSON(albums, counts))
			}
			printAlbumReports(cmd.OutOrStdout(), albums, counts, showTracks)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTracks, "tracks", false, "List every track under its album")
	return cmd
}

func indexFromDatabase(ctx context.Context, cfg *config.Config) (*catalog.DurationIndex, int, error) {
	store, err := trackdb.Open(cfg)
	if err != nil {
		return nil, 0, err
	}
	defer store.Close()
	rows, err := store.DurationRows(ctx)
	if err != nil {
		return nil, 0, err
	}
	return catalog.LoadFromDurationStore(rows, cfg.PathNormalizer()), len(rows), nil
}

func readDurationIndex(path string) (*catalog.DurationIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read duration index: %w", err)
	}
	index := catalog.NewDurationIndex()
	if err := json.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("parse duration index %s: %w", path, err)
	}
	return index, nil
}

func resolveOutput(flagValue, fallback string) (string, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		return fallback, nil
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", value, err)
	}
	return expanded, nil
}

func printMergeReport(out io.Writer, path string, pending, saved bool, report reconcile.MergeReport) {
	colorize := shouldColorize(out)
	stats := report.Stats

	fmt.Fprintln(out, renderSectionHeader("Duration merge", colorize))
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, [][]string{
		{"Index keys", strconv.Itoa(report.IndexSize)},
		{"Tracks", strconv.Itoa(stats.Tracks)},
		{"Already known", strconv.Itoa(stats.Kept)},
		{"Updated", strconv.Itoa(stats.Updated)},
		{"Unresolved", strconv.Itoa(stats.Unresolved)},
		{"Library total", formatMillis(report.TotalDurationMs)},
	}, []columnAlignment{alignLeft, alignRight}))

	if len(report.Albums) > 0 {
		rows := make([][]string, 0, len(report.Albums))
		for _, album := range report.Albums {
			rows = append(rows, []string{
				album.Title,
				fmt.Sprintf("%d/%d", album.WithDuration, album.Tracks),
				formatMillis(album.TotalDurationMs),
			})
		}
		footer := []string{"Total", fmt.Sprintf("%d/%d", report.TracksTimed, stats.Tracks), formatMillis(report.TotalDurationMs)}
		fmt.Fprintln(out, renderTableWithFooter([]string{"Album", "Timed", "Duration"}, rows, footer,
			[]columnAlignment{alignLeft, alignRight, alignRight}))
	}
	if len(stats.Missing) > 0 {
		fmt.Fprintln(out, renderSectionHeader("Unresolved", colorize))
		for _, path := range stats.Missing {
			fmt.Fprintf(out, "  %s\n", path)
		}
	}

	switch {
	case saved:
		fmt.Fprintf(out, "Saved %s\n", path)
	case pending:
		fmt.Fprintf(out, "Dry run; %s not written\n", path)
	default:
		fmt.Fprintf(out, "No changes; %s left untouched\n", path)
	}
}

type albumJSON struct {
	Name         string      `json:"name"`
	Path         string      `json:"path"`
	Tracks       []trackJSON `json:"tracks"`
	TotalSeconds float64     `json:"total_seconds"`
}

type trackJSON struct {
	TrackNumber     int     `json:"track_number,omitempty"`
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration_seconds"`
	FilePath        string  `json:"file_path"`
}

func albumReportsJSON(albums []trackdb.AlbumReport, counts trackdb.Counts) any {
	out := make([]albumJSON, 0, len(albums))
	for _, album := range albums {
		entry := albumJSON{
			Name:         album.Name,
			Path:         album.Path,
			Tracks:       make([]trackJSON, 0, len(album.Tracks)),
			TotalSeconds: album.TotalSeconds(),
		}
		for _, track := range album.Tracks {
			entry.Tracks = append(entry.Tracks, trackJSON{
				TrackNumber:     track.TrackNumber,
				Title:           track.Title,
				DurationSeconds: track.DurationSeconds,
				FilePath:        track.FilePath,
			})
		}
		out = append(out, entry)
	}
	return map[string]any{
		"albums":           out,
		"album_count":      counts.Albums,
		"track_count":      counts.Tracks,
		"tracks_with_time": counts.TracksWithTime,
		"total_seconds":    counts.TotalSeconds,
	}
}

func printAlbumReports(out io.Writer, albums []trackdb.AlbumReport, counts trackdb.Counts, showTracks bool) {
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderSectionHeader("Track database", colorize))
	if len(albums) == 0 {
		fmt.Fprintln(out, "No albums recorded; run `zappavault durations scan` first")
		return
	}

	rows := make([][]string, 0, len(albums))
	for _, album := range albums {
		rows = append(rows, []string{album.Name, strconv.Itoa(len(album.Tracks)), scanner.FormatSeconds(album.TotalSeconds())})
	}
	footer := []string{
		fmt.Sprintf("%d albums", counts.Albums),
		fmt.Sprintf("%d/%d", counts.TracksWithTime, counts.Tracks),
		scanner.FormatSeconds(counts.TotalSeconds),
	}
	fmt.Fprintln(out, renderTableWithFooter([]string{"Album", "Tracks", "Duration"}, rows, footer,
		[]columnAlignment{alignLeft, alignRight, alignRight}))

	if !showTracks {
		return
	}
	for _, album := range albums {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader(album.Name, colorize))
		trackRows := make([][]string, 0, len(album.Tracks))
		for _, track := range album.Tracks {
			number := ""
			if track.TrackNumber > 0 {
				number = strconv.Itoa(track.TrackNumber)
			}
			trackRows = append(trackRows, []string{number, track.Title, scanner.FormatSeconds(track.DurationSeconds)})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "Title", "Duration"}, trackRows,
			[]columnAlignment{alignRight, alignLeft, alignRight}))
	}
}

func formatMillis(ms int64) string {
	return scanner.FormatSeconds(float64(ms) / 1000)
}
