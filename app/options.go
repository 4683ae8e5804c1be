package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdeb-project/jdeb/internal/daemon"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/db/controller/setting"
	"github.com/jdeb-project/jdeb/internal/plugin/activator"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(optionsCmd)
}

var optionsCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "options",
	Short: "List the stored option names and whether the plugin is activated",
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

		installed, err := activator.Installed(cmd.Context(), db)
		if err != nil {
			return err
		}

		names, err := setting.Names(cmd.Context(), db)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if _, err = fmt.Fprintf(out, "%s installed: %t\n", jdeb.OptionName, installed); err != nil {
			return err
		}

		for _, name := range names {
			if _, err = fmt.Fprintln(out, name); err != nil {
				return err
			}
		}

		return nil
	},
}
