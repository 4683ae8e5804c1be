// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "JDEB_CONFIG_JSON"

// Override changes the configuration after it was read and before it is validated.
type Override func(*Config)

// ReadConfig from config file.
func ReadConfig(path string, overrides ...Override) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	for _, o := range overrides {
		o(&c)
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c.redacted()); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c.redacted()); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// redacted returns a copy without secrets, used by the dump functions.
func (c *Config) redacted() Config {
	const mask = "********"

	cp := *c
	if cp.DB.Password != "" {
		cp.DB.Password = mask
	}

	if cp.Webserver.NonceSecret != "" {
		cp.Webserver.NonceSecret = mask
	}

	if cp.Admin.Password != "" {
		cp.Admin.Password = mask
	}

	if cp.Log.DataDog.APIKey != "" {
		cp.Log.DataDog.APIKey = mask
	}

	return cp
}

// validate minimal config settings and fill in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineSQLite
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrapf(ErrUnknownGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	// the nonce secret may only be generated on the fly in dev mode
	if c.Webserver.NonceSecret == "" && !c.DevMode {
		return errors.Wrap(ErrEmptyNonceSecret, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Webserver.NonceLifetime.Duration == 0 {
		c.Webserver.NonceLifetime = Duration{24 * time.Hour}
	}

	if c.Webserver.Session.ExpiryTime.Duration == 0 {
		c.Webserver.Session.ExpiryTime = Duration{12 * time.Hour}
	}

	if c.Plugin.Name == "" {
		c.Plugin.Name = DefaultPluginName
	}

	if c.Plugin.Version == "" {
		c.Plugin.Version = DefaultPluginVersion
	}

	if c.I18n.DefaultLocale == "" {
		c.I18n.DefaultLocale = "en"
	}

	return nil
}
