package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zappavault/internal/dropbox"
	"zappavault/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, the track database, the library file and credentials",
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

			var auth preflight.Authenticator
			if online && cfg.RequireDropboxCredentials() == nil {
				auth = dropbox.NewClient(dropbox.ConfigFrom(cfg), dropbox.WithLogger(logger))
			}
			results := preflight.RunAll(runCtx, cfg, auth)
			failed := preflight.Failed(results)

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, map[string]any{"checks": results, "failed": failed}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader("Status", colorize))
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}
			if failed > 0 && ctx.strictFlag != nil && *ctx.strictFlag {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, "Also refresh a Dropbox access token to verify the credentials")
	return cmd
}
