package app

import (
	"github.com/spf13/cobra"

	"github.com/jdeb-project/jdeb/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().Bool(flagDev, false, "Enable dev mode")

	startCmd.Flags().Bool(
		flagBrowse,
		false,
		"Enable static file browsing (for development purposes only)",
	)

	_ = env.BindPFlag(flagDev, startCmd.Flags().Lookup(flagDev))
	_ = env.BindPFlag(flagBrowse, startCmd.Flags().Lookup(flagBrowse))

	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "start",
	Short: "Start the blocker web service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		d, err := daemon.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		return d.Start()
	},
}
