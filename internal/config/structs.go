package config

import (
	"time"

	"github.com/jdeb-project/jdeb/internal/logger"
)

const (
	// DefaultPluginName is the handle used for option groups, pages and assets.
	DefaultPluginName = "javascript-disposable-email-blocker"

	// DefaultPluginVersion is appended to every enqueued asset for cache busting.
	DefaultPluginVersion = "1.0.0"
)

// Duration wraps time.Duration so it can be written as "12h" in toml files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))

	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Session settings.
type Session struct {
	ExpiryTime Duration
}

// Plugin identifies the blocker for asset versions and option names.
type Plugin struct {
	Name    string
	Version string
}

// Admin is the initial administrator seeded on an empty user table.
type Admin struct {
	Username string
	Email    string
	Password string
}

// I18n configures the text domain.
type I18n struct {
	DefaultLocale string
}

// API configures the public check endpoint.
type API struct {
	AllowOrigins   string // comma separated list for CORS, "*" for all
	RateLimit      int    // max requests per RateWindow and IP, 0 disables limiting
	RateWindow     Duration
	DisableMetrics bool
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Plugin    Plugin
	Admin     Admin
	I18n      I18n
	API       API
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool     // enable static file browsing (for development purposes only)
	DisableRecover bool     // disable recover middleware
	Domain         string   // domain name for the webserver
	Port           int      // listening port for the webserver
	ShutDownTime   int      // wait time for shutdown
	URL            string   // base url for the webserver
	NonceSecret    string   // secret the anti-forgery tokens are derived from
	NonceLifetime  Duration // full validity window of a nonce
	Session        Session  // session settings
}
