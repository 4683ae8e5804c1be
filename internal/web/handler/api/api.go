// Package api serves the JSON endpoints the blocker script calls.
package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog/log"

	"github.com/jdeb-project/jdeb/internal/blocker"
	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/web/handler"
)

const (
	// Path is the prefix of the api routes.
	Path = "/api/v1"

	// CheckPath classifies an address.
	CheckPath = Path + "/check"

	// SettingsPath returns the public client configuration.
	SettingsPath = Path + "/settings"

	// maxEmailLength is the longest address RFC 5321 allows.
	maxEmailLength = 254

	defaultRateWindow = time.Minute
)

var (
	// ErrEmailMissing is returned when the email query parameter is absent.
	ErrEmailMissing = errors.New("query parameter email is required")

	// ErrEmailTooLong is returned for addresses longer than 254 characters.
	ErrEmailTooLong = errors.New("email is too long")
)

// CheckResponse is the reply of the check endpoint.
type CheckResponse struct {
	blocker.Result
	Verdict blocker.Verdict `json:"verdict"`
}

// ErrorResponse is the reply of a rejected request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service is the api handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	host *handler.Host
}

// Handler is the api handler.
var Handler = Service{}

// Init initializes the api handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, host *handler.Host) error {
	if app == nil || cfg == nil || host == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.host = host

	handlers := []fiber.Handler{
		cors.New(cors.Config{
			AllowOrigins: allowOrigins(cfg.API.AllowOrigins),
			AllowMethods: fiber.MethodGet + "," + fiber.MethodOptions,
		}),
	}

	if cfg.API.RateLimit > 0 {
		window := cfg.API.RateWindow.Duration
		if window <= 0 {
			window = defaultRateWindow
		}

		handlers = append(handlers, limiter.New(limiter.Config{
			Max:        cfg.API.RateLimit,
			Expiration: window,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Message: "too many requests"})
			},
		}))
	}

	group := app.Group(Path, handlers...)
	group.Get("/check", s.Check)
	group.Get("/settings", s.Settings)

	return nil
}

// Check classifies the address in the email query parameter and applies the stored policy.
func (s *Service) Check(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))

	switch {
	case email == "":
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: ErrEmailMissing.Error()})
	case len(email) > maxEmailLength:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Message: ErrEmailTooLong.Error()})
	}

	ctx := s.host.Context(c)

	settings, err := s.host.Settings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Message: "internal server error"})
	}

	result, verdict := s.host.Classifier.Check(email, settings)
	// stored defaults have catalog entries, custom messages pass through unchanged
	if verdict.Message != "" && s.host.Text != nil {
		verdict.Message = s.host.Text.T(ctx, verdict.Message)
	}

	log.Debug().Str("domain", result.Domain).Str("reason", verdict.Reason).Bool("block", verdict.Block).Msg("email checked")

	c.Set(fiber.HeaderCacheControl, "no-store")

	return c.JSON(CheckResponse{Result: result, Verdict: verdict})
}

// Settings returns the configuration the script is localized with.
func (s *Service) Settings(c *fiber.Ctx) error {
	ctx := s.host.Context(c)

	settings, err := s.host.Settings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Message: "internal server error"})
	}

	return c.JSON(s.host.Plugin.Public().ConfigFor(ctx, settings))
}

func allowOrigins(in string) string {
	if strings.TrimSpace(in) == "" {
		return "*"
	}

	parts := strings.Split(in, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return strings.Join(parts, ",")
}
