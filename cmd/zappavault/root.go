package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var jsonFlag bool
	var strictFlag bool

	ctx := newCommandContext(&configFlag, &jsonFlag, &strictFlag)

	rootCmd := &cobra.Command{
		Use:           "zappavault",
		Short:         "Reconcile and maintain the ZappaVault music library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON instead of tables")
	rootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false, "Exit non-zero when any item failed")

	rootCmd.AddCommand(newReconcileCommand(ctx))
	rootCmd.AddCommand(newDurationsCommand(ctx))
	rootCmd.AddCommand(newLinksCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
