package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"zappavault/internal/config"
	"zappavault/internal/dropbox"
	"zappavault/internal/fileutil"
	"zappavault/internal/library"
	"zappavault/internal/links"
	"zappavault/internal/logging"
	"zappavault/internal/services"
)

// newLinkIssuer is swapped in tests to avoid talking to Dropbox.
var newLinkIssuer = func(cfg *config.Config, logger *slog.Logger) links.Issuer {
	return dropbox.NewClient(dropbox.ConfigFrom(cfg),
		dropbox.WithPathNormalizer(cfg.PathNormalizer()),
		dropbox.WithLogger(logger))
}

func newLinksCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Manage shared links in the library JSON",
	}
	cmd.AddCommand(newLinksGenerateCommand(ctx))
	return cmd
}

func newLinksGenerateCommand(ctx *commandContext) *cobra.Command {
	var libraryFile string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue streaming, download and cover links for the library",
		Long: `Issue streaming, download and cover links for the library.

Tracks that already have a streaming URL are left alone. Progress made before
an interrupt or a failed item is still written back to the library file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireDropboxCredentials(); err != nil {
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
			release, err := fileutil.Lock(libPath)
			if err != nil {
				return err
			}
			defer release() //nolint:errcheck

			snap, err := library.Load(libPath)
			if err != nil {
				return err
			}

			size := cfg.Dropbox.BatchSize
			if batchSize > 0 {
				size = batchSize
			}
			runner := links.NewRunner(newLinkIssuer(cfg, logger), links.Options{
				BatchSize:    size,
				RequestDelay: cfg.RequestDelay(),
				BatchDelay:   cfg.BatchDelay(),
				Logger:       logger,
			})

			var failures services.Failures
			stats, runErr := runner.Run(runCtx, snap, &failures)
			// Only a completed run is written; an interrupted one leaves the
			// library file as it was.
			saved := false
			if runErr == nil && stats.Changed() {
				if err := library.Save(libPath, snap); err != nil {
					return err
				}
				saved = true
			}
			if errors.Is(runErr, context.Canceled) {
				logging.WarnWithContext(logger, "link generation interrupted", "links_interrupted",
					logging.Int("tracks_linked", stats.TracksLinked),
					logging.String(logging.FieldErrorHint, "run the command again; existing links are reused"),
					logging.String(logging.FieldImpact, "library file left unchanged"))
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, struct {
					Path     string             `json:"path"`
					Saved    bool               `json:"saved"`
					Stats    links.Stats        `json:"stats"`
					Failures *services.Failures `json:"failures"`
				}{libPath, saved, stats, &failures}); err != nil {
					return err
				}
			} else {
				printLinkStats(cmd.OutOrStdout(), libPath, saved, stats, &failures)
			}
			if runErr != nil {
				return runErr
			}
			return ctx.strictError(logger, &failures)
		},
	}

	cmd.Flags().StringVar(&libraryFile, "library", "", "Library JSON to update (default: paths.library_json)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Requests per batch (default: dropbox.batch_size)")
	return cmd
}

func printLinkStats(out io.Writer, path string, saved bool, stats links.Stats, failures *services.Failures) {
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderSectionHeader("Links", colorize))
	fmt.Fprintln(out, renderTable([]string{"", "Tracks", "Covers"}, [][]string{
		{"Seen", strconv.Itoa(stats.Tracks), strconv.Itoa(stats.Covers)},
		{"Linked", strconv.Itoa(stats.TracksLinked), strconv.Itoa(stats.CoversLinked)},
		{"Already linked", strconv.Itoa(stats.TracksExisting), strconv.Itoa(stats.CoversExisting)},
		{"Repaired", "", strconv.Itoa(stats.CoversRepaired)},
		{"Skipped", strconv.Itoa(stats.TracksNoPath), strconv.Itoa(stats.CoversSkipped)},
		{"Failed", strconv.Itoa(stats.TracksFailed), strconv.Itoa(stats.CoversFailed)},
	}, []columnAlignment{alignLeft, alignRight, alignRight}))
	fmt.Fprintf(out, "Batches: %d  Saved: %s\n", stats.Batches, yesNo(saved))
	if stats.Retriable > 0 {
		fmt.Fprintf(out, "%d failure(s) look temporary; run again later\n", stats.Retriable)
	}
	if saved {
		fmt.Fprintf(out, "Updated %s\n", path)
	}
	printFailures(out, failures, colorize)
}
