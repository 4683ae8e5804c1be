package app

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jdeb-project/jdeb/internal/daemon"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/i18n"
	"github.com/jdeb-project/jdeb/internal/plugin"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(hooksCmd)
}

var hooksCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "hooks",
	Short: "List the events the plugin binds and their callbacks in dispatch order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		text, err := i18n.New(cfg.Plugin.Name, cfg.I18n.DefaultLocale)
		if err != nil {
			return errors.Wrap(err, "failed to create text domain")
		}

		host := hooks.NewHost()
		plugin.New(plugin.Options{
			Name:     cfg.Plugin.Name,
			Version:  cfg.Plugin.Version,
			Text:     text,
			Filters:  host,
			CheckURL: daemon.CheckURL(cfg),
		}).Run(host)

		out := cmd.OutOrStdout()

		for _, event := range host.Events() {
			var kinds []string
			if host.HasAction(event) {
				kinds = append(kinds, hooks.KindAction.String())
			}

			if host.HasFilter(event) {
				kinds = append(kinds, hooks.KindFilter.String())
			}

			if hooks.IsLifecycleEvent(event) {
				kinds = append(kinds, "lifecycle")
			}

			if _, err = fmt.Fprintf(out, "%s (%s)\n", event, strings.Join(kinds, ", ")); err != nil {
				return err
			}

			for _, target := range host.Targets(event) {
				if _, err = fmt.Fprintf(out, "  %s\n", target); err != nil {
					return err
				}
			}
		}

		return nil
	},
}
