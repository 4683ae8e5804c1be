// Package settings serves the admin settings pages plugins add to the menu,
// the options form endpoint and the reset form endpoint.
package settings

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jdeb-project/jdeb/internal/auth"
	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/db/models"
	"github.com/jdeb-project/jdeb/internal/plugin/admin"
	"github.com/jdeb-project/jdeb/internal/settingsapi"
	"github.com/jdeb-project/jdeb/internal/web/handler"
	"github.com/jdeb-project/jdeb/internal/web/navigation"
)

const (
	// PagePath is the route of a settings page.
	PagePath = navigation.AdminSettingsPath + ":slug"

	// ResetPath is the route of the reset form of a settings page.
	ResetPath = PagePath + "/reset"

	// OptionsPath receives the options form of every settings page.
	OptionsPath = handler.AdminPath + "/options"

	// TemplateName is the name of the settings page template.
	TemplateName = "admin/settings"

	// UpdatedQuery is set on the redirect after a successful save.
	UpdatedQuery = "settings-updated"
)

// Service is the settings page handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	host *handler.Host
}

// Handler is the settings page handler.
var Handler = Service{}

// Init initializes the settings page handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, host *handler.Host) error {
	if app == nil || cfg == nil || host == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.host = host

	requireLogin := auth.RequireCapability(host.Auth, auth.CapRead)

	app.Get(handler.AdminPath, requireLogin, s.Index)
	app.Get(PagePath, requireLogin, s.Get)
	app.Post(OptionsPath, requireLogin, s.Options)
	app.Post(ResetPath, requireLogin, s.Reset)

	return nil
}

// Index redirects to the settings page of the plugin.
func (s *Service) Index(c *fiber.Ctx) error {
	return c.Redirect(navigation.PagePath(s.host.Plugin.Name()))
}

// Get renders a settings page.
func (s *Service) Get(c *fiber.Ctx) error {
	ctx := s.host.Context(c)

	settings, err := s.host.Settings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
	}

	return s.render(c, c.Params("slug"), settings, nil, fiber.StatusOK)
}

// Options saves a submitted options form: the nonce of the option group is verified,
// the values are sanitized by the registered callback, validated and written.
func (s *Service) Options(c *fiber.Ctx) error {
	ctx := s.host.Context(c)
	slug := c.Query("page", s.host.Plugin.Name())

	current, err := s.host.Settings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
	}

	screen, err := s.host.AdminScreen(ctx, slug, current)
	if errors.Is(err, handler.ErrPageNotFound) {
		return fiber.ErrNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("page", slug).Msg("failed to build settings page")
		return fiber.ErrInternalServerError
	}

	if !s.allowed(c, screen.Page) {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
	}

	group := c.FormValue("option_page")

	setting, ok := screen.Registry.Setting(group)
	if !ok || setting.Option != jdeb.OptionName {
		log.Warn().Str("option_page", group).Msg("options form for unknown option group")
		return c.Status(fiber.StatusForbidden).SendString("Forbidden: unknown option group")
	}

	if !s.host.Nonces.Valid(c.FormValue(admin.OptionsNonceField), settingsapi.OptionsAction(group), sessionID(c)) {
		log.Warn().Str("option_page", group).Str("ip", c.IP()).Msg("options form with invalid nonce")
		return c.Status(fiber.StatusForbidden).SendString("Forbidden: the link you followed has expired")
	}

	submitted := jdeb.FromForm(func(field string) string { return c.FormValue(field) })

	cleaned, err := screen.Registry.Sanitize(ctx, group, submitted)
	if err != nil {
		return fiber.ErrBadRequest
	}

	next, ok := cleaned.(jdeb.Settings)
	if !ok {
		log.Error().Str("option_page", group).Msgf("sanitize returned %T", cleaned)
		return fiber.ErrInternalServerError
	}

	if err = next.Validate(); err != nil {
		log.Debug().Err(err).Msg("settings rejected")
		return s.render(c, slug, &next, messages(validationErrors(err)), fiber.StatusBadRequest)
	}

	if err = next.Save(ctx, s.host.DB); err != nil {
		log.Error().Err(err).Msg("failed to save settings")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to save settings")
	}

	log.Info().Str("option", setting.Option).Str("webmail_block", next.WebmailBlock).Msg("settings saved")

	return c.Redirect(navigation.PagePath(slug)+"?"+UpdatedQuery+"=true", fiber.StatusSeeOther)
}

// Reset fires the reset hook with the submitted form and returns to the page.
// Nothing tells the user whether the reset happened.
func (s *Service) Reset(c *fiber.Ctx) error {
	slug := c.Params("slug")

	form, err := submittedForm(c)
	if err != nil {
		log.Debug().Err(err).Msg("unreadable reset form")
		return fiber.ErrBadRequest
	}

	user := currentUser(c)
	if user == nil || !auth.UserCan(user, auth.CapManageOptions) {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
	}

	s.host.Reset(s.host.Context(c), &settingsapi.Submission{
		Form:      form,
		SessionID: sessionID(c),
	})

	return c.Redirect(navigation.PagePath(slug), fiber.StatusSeeOther)
}

// submittedForm collects urlencoded and multipart form values.
func submittedForm(c *fiber.Ctx) (url.Values, error) {
	form := url.Values{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		form.Add(string(k), string(v))
	})

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return form, nil
	}

	mf, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	for k, values := range mf.Value {
		for _, v := range values {
			form.Add(k, v)
		}
	}

	return form, nil
}

func (s *Service) render(c *fiber.Ctx, slug string, settings *jdeb.Settings, errs []string, status int) error {
	ctx := s.host.Context(c)

	screen, err := s.host.AdminScreen(ctx, slug, settings)
	if errors.Is(err, handler.ErrPageNotFound) {
		return fiber.ErrNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("page", slug).Msg("failed to build settings page")
		return fiber.ErrInternalServerError
	}

	if !s.allowed(c, screen.Page) {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
	}

	view, err := screen.Page.Render(ctx, settingsapi.PageRequest{
		Registry:  screen.Registry,
		SessionID: sessionID(c),
		Updated:   c.Query(UpdatedQuery) == "true",
		Errors:    errs,
	})
	if err != nil {
		log.Error().Err(err).Str("page", slug).Msg("failed to render settings page")
		return fiber.ErrInternalServerError
	}

	user := currentUser(c)
	nav := navigation.ForSettingsPage(screen.Menu, slug, func(capability string) bool {
		return auth.UserCan(user, capability)
	})

	return c.Status(status).Render(TemplateName, fiber.Map{
		"Title":       s.cfg.Title,
		"T":           s.host.Translator(ctx),
		"Navigation":  nav,
		"Page":        view,
		"User":        user,
		"Styles":      screen.Assets.Styles,
		"Scripts":     screen.Assets.Scripts,
		"OptionsPath": OptionsPath + "?page=" + url.QueryEscape(slug),
		"ResetPath":   navigation.PagePath(slug) + "/reset",
	}, handler.BaseLayout)
}

func (s *Service) allowed(c *fiber.Ctx, page settingsapi.Page) bool {
	return auth.UserCan(currentUser(c), page.Capability)
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(auth.LocalsUser).(*models.User)
	return user
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(auth.LocalsSessionID).(string)
	return id
}
