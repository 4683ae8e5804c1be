// Package daemon wires the database, the plugin and the web service together.
package daemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jdeb-project/jdeb/internal/assets"
	"github.com/jdeb-project/jdeb/internal/auth"
	"github.com/jdeb-project/jdeb/internal/blocker"
	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/db/dsn"
	"github.com/jdeb-project/jdeb/internal/db/models"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/i18n"
	"github.com/jdeb-project/jdeb/internal/logger/adapter/stdlogger"
	"github.com/jdeb-project/jdeb/internal/nonce"
	"github.com/jdeb-project/jdeb/internal/plugin"
	"github.com/jdeb-project/jdeb/internal/plugin/activator"
	"github.com/jdeb-project/jdeb/internal/plugin/admin"
	"github.com/jdeb-project/jdeb/internal/plugin/public"
	"github.com/jdeb-project/jdeb/internal/uniuri"
	"github.com/jdeb-project/jdeb/internal/web"
	"github.com/jdeb-project/jdeb/internal/web/handler"
	"github.com/jdeb-project/jdeb/internal/web/handler/api"
	"github.com/jdeb-project/jdeb/internal/web/session"
)

// sessionTable is shared by the mysql and postgres session storages.
const sessionTable = "sessions"

// ErrNilConfig is returned when the daemon is built without a configuration.
var ErrNilConfig = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	storage    fiber.Storage
	webService *web.Service
}

// Start serves until a termination signal arrives, then shuts down gracefully.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	log.Info().Str("addr", addr).Str("url", d.cfg.Webserver.URL).Msg("starting web service")

	done := make(chan error, 1)

	go func() {
		done <- d.webService.Start(addr)
	}()

	d.webService.WaitShutdown()

	err := <-done

	if d.storage != nil {
		if cErr := d.storage.Close(); cErr != nil {
			log.Error().Err(cErr).Msg("closing session storage")
		}
	}

	return err
}

// OpenDB opens the configured database engine with zerolog as gorm logger.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite, "":
		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		return nil, errors.Wrap(config.ErrUnknownGormEngine, cfg.DB.GormEngine)
	}

	level := gormlogger.Warn
	if cfg.DevMode {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlogger.NewComponent("gorm"), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond, //nolint:mnd
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	return db, nil
}

// Migrate creates or updates the settings and users tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Setting{},
	); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}

// Prepare migrates, seeds the administrator and activates the plugin on first start.
func Prepare(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}

	if err := seed(ctx, cfg, db); err != nil {
		return err
	}

	if _, err := activator.Install(ctx, db); err != nil {
		return errors.Wrap(err, "failed to activate")
	}

	return nil
}

// newSessionStorage keeps admin sessions next to the options. SQLite falls back to memory.
func newSessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	default:
		return nil
	}
}

// nonceSecret returns the configured secret. Dev mode may run with a throwaway one.
func nonceSecret(cfg *config.Config) string {
	if cfg.Webserver.NonceSecret != "" {
		return cfg.Webserver.NonceSecret
	}

	log.Warn().Msg("no nonce secret configured, using a random one; forms break on restart")

	return uniuri.NewLen(uniuri.SecretLen)
}

// CheckURL is where the public script sends addresses to.
func CheckURL(cfg *config.Config) string {
	return strings.TrimSuffix(cfg.Webserver.URL, "/") + api.CheckPath
}

// assetVersion is the ver= of enqueued assets. Dev mode appends a fingerprint
// of the embedded plugin assets.
func assetVersion(cfg *config.Config) string {
	if !cfg.DevMode {
		return cfg.Plugin.Version
	}

	return cfg.Plugin.Version + "-" + assets.ContentHash(web.StaticFS(), admin.StyleSrc, admin.ScriptSrc, public.ScriptSrc)
}

// NewHost builds the plugin, registers its hooks and fires plugins_loaded.
func NewHost(ctx context.Context, cfg *config.Config, db *gorm.DB) (*handler.Host, error) {
	nonces, err := nonce.New(nonceSecret(cfg), cfg.Webserver.NonceLifetime.Duration)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create nonce manager")
	}

	text, err := i18n.New(cfg.Plugin.Name, cfg.I18n.DefaultLocale)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create text domain")
	}

	classifier, err := blocker.New()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load domain lists")
	}

	hookHost := hooks.NewHost()

	p := plugin.New(plugin.Options{
		Name:     cfg.Plugin.Name,
		Version:  assetVersion(cfg),
		DB:       db,
		Nonces:   nonces,
		Text:     text,
		Filters:  hookHost,
		CheckURL: CheckURL(cfg),
	})
	p.Run(hookHost)

	if err = hookHost.DoAction(ctx, hooks.PluginsLoaded); err != nil {
		log.Error().Err(err).Msg("plugins_loaded")
	}

	disposable, webmail := classifier.Size()
	log.Info().
		Int("disposable", disposable).
		Int("webmail", webmail).
		Strs("languages", tagStrings(text)).
		Msg("blocker ready")

	return &handler.Host{
		DB:         db,
		Hooks:      hookHost,
		Plugin:     p,
		Nonces:     nonces,
		Text:       text,
		Classifier: classifier,
		Auth:       auth.NewService(db),
		StaticURL:  handler.StaticPath,
	}, nil
}

func tagStrings(text *i18n.TextDomain) []string {
	tags := text.Languages()
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		out = append(out, t.String())
	}

	return out
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Prepare(ctx, cfg, db); err != nil {
		return nil, err
	}

	storage := newSessionStorage(cfg)
	session.Init(storage)

	host, err := NewHost(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		storage:    storage,
		webService: web.New(cfg, host),
	}, nil
}
