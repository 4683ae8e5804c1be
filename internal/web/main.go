// Package web is the fiber host of the plugin: it renders the public and admin
// pages, fires the lifecycle hooks and serves the api, metrics and static files.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jdeb-project/jdeb/internal/auth"
	"github.com/jdeb-project/jdeb/internal/config"
	fiberlogger "github.com/jdeb-project/jdeb/internal/logger/adapter/fiber"
	"github.com/jdeb-project/jdeb/internal/web/handler"
	"github.com/jdeb-project/jdeb/internal/web/handler/admin/settings"
	"github.com/jdeb-project/jdeb/internal/web/handler/api"
	"github.com/jdeb-project/jdeb/internal/web/handler/front"
	"github.com/jdeb-project/jdeb/internal/web/handler/login"
	"github.com/jdeb-project/jdeb/internal/web/handler/logout"
	authmiddleware "github.com/jdeb-project/jdeb/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	host         *handler.Host
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	s.alive.Store(true)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// SetFastShutdown skips the draining wait on shutdown.
func (s *Service) SetFastShutdown(fast bool) {
	s.fastShutDown = fast
}

// WaitShutdown waits for a termination signal and shuts the web service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown drains and stops the http server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	s.alive.Store(false)

	if !s.fastShutDown && s.cfg.Webserver.ShutDownTime > 0 {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 while serving and 503 while draining.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("ok")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, host *handler.Host) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if host == nil || host.DB == nil || host.Hooks == nil || host.Auth == nil {
		panic("host cannot be nil")
	}

	return newService(cfg, host, newTemplateEngine(cfg))
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	templateEngine := html.NewFileSystem(templatesFS(), ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("year", func() int {
		return time.Now().Year()
	})

	// t translates with the .T of the page, msg is kept when a page has none
	templateEngine.AddFunc("t", func(tr func(string) string, msg string) string {
		if tr == nil {
			return msg
		}

		return tr(msg)
	})

	return templateEngine
}

func newService(cfg *config.Config, host *handler.Host, views fiber.Views) *Service {
	if host.StaticURL == "" {
		host.StaticURL = handler.StaticPath
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          views,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		SkipPrefixes:  []string{handler.StaticPath},
	}))

	// serve embedded static files
	app.Use(strings.TrimSuffix(handler.StaticPath, "/"),
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
				MaxAge:     3600, //nolint:mnd
			},
		),
	)

	service := &Service{
		cfg:  cfg,
		App:  app,
		host: host,
	}

	app.Get(CheckAlivePath, service.CheckAlive)

	if !cfg.API.DisableMetrics {
		app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// login redirects, then capabilities for templates
	app.Use(authmiddleware.Middleware)
	app.Use(auth.AddCapabilitiesToLocals(host.Auth))

	handlers := []handler.Service{
		&front.Handler,
		&login.Handler,
		&logout.Handler,
		&settings.Handler,
		&api.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, cfg, host); err != nil {
			log.Fatal().Err(err).Msg("can't init web handler")
		}
	}

	return service
}
