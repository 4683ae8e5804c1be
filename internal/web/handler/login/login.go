package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jdeb-project/jdeb/internal/auth"
	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/db/models"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/web/handler"
	"github.com/jdeb-project/jdeb/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// Template is the name of the login template.
	Template = "login"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	host  *handler.Host
	local *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

// credentials is the submitted login form.
type credentials struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, host *handler.Host) error {
	if app == nil || cfg == nil || host == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.host = host
	s.local = auth.NewLocalProvider(host.DB)

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, nil)
}

// render shows the login page. The blocker script is enqueued through login_enqueue_scripts.
func (s *Service) render(c *fiber.Ctx, loginErr error) error {
	ctx := s.host.Context(c)

	settings, err := s.host.Settings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		return fiber.ErrInternalServerError
	}

	page, err := s.host.PublicAssets(ctx, hooks.LoginEnqueueScripts, settings)
	if err != nil {
		log.Error().Err(err).Msg("failed to render login assets")
		return fiber.ErrInternalServerError
	}

	data := fiber.Map{
		"Title":   s.cfg.Title,
		"T":       s.host.Translator(ctx),
		"Styles":  page.Styles,
		"Scripts": page.Scripts,
	}

	if loginErr != nil {
		data["error"] = loginErr.Error()
	}

	return c.Render(Template, data)
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	creds := new(credentials)
	if err := c.BodyParser(creds); err != nil {
		return s.render(c, ErrInvalidFormData)
	}

	user, err := s.local.Authenticate(c.UserContext(), creds.Username, creds.Password)
	if err != nil {
		log.Info().Err(err).Str("username", creds.Username).Str("ip", c.IP()).Msg("login failed")

		if errors.Is(err, auth.ErrUserNotFound) ||
			errors.Is(err, auth.ErrInvalidPassword) ||
			errors.Is(err, auth.ErrUserAccountDisabled) {
			return s.render(c, ErrInvalidCredentials)
		}

		return s.render(c, ErrInternalServerError)
	}

	if err = s.startSession(c, user); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return s.render(c, ErrInternalServerError)
	}

	log.Info().Str("username", user.Username).Str("ip", c.IP()).Msg("login")

	return c.Redirect(handler.AdminPath)
}

func (s *Service) startSession(c *fiber.Ctx, user *models.User) error {
	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return err
	}

	userSession := &session.Data{
		User: *user,
	}

	expiry := s.cfg.Webserver.Session.ExpiryTime.Duration

	if err = userSession.Write(sessionID, expiry); err != nil {
		return err
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(expiry.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	return nil
}
