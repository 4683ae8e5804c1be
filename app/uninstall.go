package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdeb-project/jdeb/internal/daemon"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/plugin/activator"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(uninstallCmd)
}

var uninstallCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "uninstall",
	Short: "Remove the stored settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := daemon.OpenDB(cfg)
		if err != nil {
			return err
		}

		if err = daemon.Migrate(db); err != nil {
			return err
		}

		if err = activator.Uninstall(cmd.Context(), db); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", jdeb.OptionName)

		return err
	},
}
