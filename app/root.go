// Package app implements the main application commands.
package app

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/logger"
)

// EnvPrefix is prepended to every flag bound to the environment, e.g. JDEB_CONFIG.
const EnvPrefix = "JDEB"

const (
	flagConfig = "config"
	flagDev    = "dev"
	flagBrowse = "browse"
	flagJSON   = "json"
)

var (
	env = newEnv() //nolint:gochecknoglobals

	rootCmd = &cobra.Command{ //nolint:gochecknoglobals
		Use:   "jdeb",
		Short: "jdeb blocks disposable and webmail addresses on signup and login forms",
		Long: `jdeb serves a small client script that warns about or blocks disposable
and webmail email addresses, together with an admin screen for its messages.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().String(flagConfig, "./etc/", "Directory holding main.toml")
	_ = env.BindPFlag(flagConfig, rootCmd.PersistentFlags().Lookup(flagConfig))
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// loadConfig reads main.toml from the --config directory and applies the flag overrides.
func loadConfig() (*config.Config, error) {
	path := env.GetString(flagConfig)
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	// dev mode relaxes validation, so flags apply before it
	cfg, err := config.ReadConfig(path, func(c *config.Config) {
		if env.GetBool(flagDev) {
			c.DevMode = true
		}

		if env.GetBool(flagBrowse) {
			c.Webserver.BrowseStatic = true
		}
	})
	if err != nil {
		return nil, err
	}

	if err = logger.Init(cfg.Log); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}

	return &cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
