package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"zappavault/internal/catalog"
	"zappavault/internal/config"
	"zappavault/internal/listing"
	"zappavault/internal/matching"
	"zappavault/internal/reconcile"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var namesFile string
	var libraryDir string
	var showAll bool

	cmd := &cobra.Command{
		Use:   "reconcile <listing-file|->",
		Short: "Compare a scraped release listing with the library folders",
		Long: `Compare a scraped release listing with the library folders.

The listing is read from the given file, or from stdin when the argument is
"-". Folder names come from library_dir unless --names points at a file with
one folder name per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, stop, logger, err := ctx.runContext(cmd)
			if err != nil {
				return err
			}
			defer stop()

			listingText, err := readListing(cmd, args[0])
			if err != nil {
				return err
			}
			names, err := readFolderNames(cfg, namesFile, libraryDir)
			if err != nil {
				return err
			}

			report := reconcile.Reconcile(listingText, names, reconcile.Deps{
				Extractor: listing.New(cfg.Listing),
				Matcher:   matching.New(),
				Logger:    logger,
			})

			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			printReconcileReport(cmd.OutOrStdout(), report, showAll)
			return nil
		},
	}

	cmd.Flags().StringVar(&namesFile, "names", "", "File with one folder name per line (default: list library_dir)")
	cmd.Flags().StringVar(&libraryDir, "library-dir", "", "Library directory to list instead of paths.library_dir")
	cmd.Flags().BoolVar(&showAll, "all", false, "Also list releases that were found")
	return cmd
}

func readListing(cmd *cobra.Command, source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read listing from stdin: %w", err)
		}
		return string(data), nil
	}
	path, err := config.ExpandPath(source)
	if err != nil {
		return "", fmt.Errorf("resolve listing path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read listing: %w", err)
	}
	return string(data), nil
}

func readFolderNames(cfg *config.Config, namesFile, libraryDir string) ([]string, error) {
	if file := strings.TrimSpace(namesFile); file != "" {
		path, err := config.ExpandPath(file)
		if err != nil {
			return nil, fmt.Errorf("resolve names path: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read names: %w", err)
		}
		return catalog.ReadNameList(string(data)), nil
	}
	dir := cfg.Paths.LibraryDir
	if override := strings.TrimSpace(libraryDir); override != "" {
		expanded, err := config.ExpandPath(override)
		if err != nil {
			return nil, fmt.Errorf("resolve library dir: %w", err)
		}
		dir = expanded
	}
	names, err := catalog.ReadDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("list library dir: %w", err)
	}
	return names, nil
}

func printReconcileReport(out io.Writer, report reconcile.Report, showAll bool) {
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderSectionHeader("Reconciliation", colorize))
	fmt.Fprintf(out, "Releases: %d  Catalog: %d  Orphans: %d\n",
		len(report.Results), report.CatalogSize, len(report.Orphans))
	fmt.Fprintln(out, strings.Join([]string{
		colorCount("Found", len(report.Found), ansiGreen, colorize),
		colorCount("Missing", len(report.Missing), ansiRed, colorize),
		colorCount("Ambiguous", len(report.Ambiguous), ansiYellow, colorize),
	}, "  "))

	var missing, ambiguous, found [][]string
	for _, outcome := range report.Results {
		switch outcome.Status {
		case reconcile.StatusMissing:
			hint := ""
			if outcome.Hint != nil {
				hint = fmt.Sprintf("%s (%.2f)", outcome.Hint.Source, outcome.Hint.Similarity)
			}
			missing = append(missing, []string{outcome.Record.SourceKey, hint})
		case reconcile.StatusAmbiguous:
			ambiguous = append(ambiguous, []string{
				outcome.Record.SourceKey,
				outcome.Match.Entry.SourceIdentifier,
				outcome.Match.Tier.String(),
				fmt.Sprintf("%.2f", outcome.Match.Score),
			})
		case reconcile.StatusFound:
			found = append(found, []string{
				outcome.Record.SourceKey,
				outcome.Match.Entry.SourceIdentifier,
				outcome.Match.Tier.String(),
			})
		}
	}

	if len(missing) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Missing", colorize))
		fmt.Fprintln(out, renderTable([]string{"Release", "Closest folder"}, missing, nil))
	}
	if len(ambiguous) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Ambiguous", colorize))
		fmt.Fprintln(out, renderTable([]string{"Release", "Folder", "Tier", "Score"}, ambiguous,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
	}
	if showAll && len(found) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Found", colorize))
		fmt.Fprintln(out, renderTable([]string{"Release", "Folder", "Tier"}, found, nil))
	}
	if len(report.Orphans) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Unparsed folders", colorize))
		for _, name := range report.Orphans {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
}
