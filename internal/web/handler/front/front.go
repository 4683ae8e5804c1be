// Package front renders the public signup page the blocker script runs on.
package front

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/web/handler"
)

// Template is the name of the front page template.
const Template = "front"

// Service is the front page handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	host *handler.Host
}

// Handler is the front page handler.
var Handler = Service{}

// Init initializes the front page handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, host *handler.Host) error {
	if app == nil || cfg == nil || host == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.host = host

	app.Get(handler.RootPath, s.Get)

	return nil
}

// Get renders the front page with everything enqueued on wp_enqueue_scripts.
func (s *Service) Get(c *fiber.Ctx) error {
	ctx := s.host.Context(c)

	settings, err := s.host.Settings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		return fiber.ErrInternalServerError
	}

	page, err := s.host.PublicAssets(ctx, hooks.WPEnqueueScripts, settings)
	if err != nil {
		log.Error().Err(err).Msg("failed to render front page assets")
		return fiber.ErrInternalServerError
	}

	return c.Render(Template, fiber.Map{
		"Title":   s.cfg.Title,
		"T":       s.host.Translator(ctx),
		"Styles":  page.Styles,
		"Scripts": page.Scripts,
	}, handler.BaseLayout)
}
