package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdeb-project/jdeb/internal/config"
)

func init() { //nolint: gochecknoinits
	dumpCmd.Flags().Bool(flagJSON, false, "Dump as JSON instead of TOML")

	configCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	configCmd = &cobra.Command{ //nolint:gochecknoglobals
		Use:   "config",
		Short: "Inspect the configuration",
	}

	dumpCmd = &cobra.Command{ //nolint:gochecknoglobals
		Use:   "dump",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			asJSON, err := cmd.Flags().GetBool(flagJSON)
			if err != nil {
				return err
			}

			dump := config.DumpConfig
			if asJSON {
				dump = config.DumpConfigJSON
			}

			out, err := dump(cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}
)
