package handler

import (
	"context"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jdeb-project/jdeb/internal/assets"
	"github.com/jdeb-project/jdeb/internal/auth"
	"github.com/jdeb-project/jdeb/internal/blocker"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/i18n"
	"github.com/jdeb-project/jdeb/internal/nonce"
	"github.com/jdeb-project/jdeb/internal/plugin"
	"github.com/jdeb-project/jdeb/internal/settingsapi"
)

var (
	// ErrPageNotFound is returned for a settings page no plugin added to the menu.
	ErrPageNotFound = errors.New("settings page not found")
)

// Host holds the collaborators the handlers fire hooks against.
type Host struct {
	DB         *gorm.DB
	Hooks      *hooks.Host
	Plugin     *plugin.Plugin
	Nonces     *nonce.Manager
	Text       *i18n.TextDomain
	Classifier *blocker.Classifier
	Auth       *auth.Service
	// StaticURL prefixes every enqueued asset.
	StaticURL string
}

// Assets is the rendered output of an asset queue.
type Assets struct {
	Styles  template.HTML
	Scripts template.HTML
}

// AdminScreen is everything collected for one settings page request.
type AdminScreen struct {
	Menu     *settingsapi.Menu
	Registry *settingsapi.Registry
	Page     settingsapi.Page
	Assets   Assets
}

// Context returns the request context carrying the negotiated language.
func (h *Host) Context(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if h.Text == nil {
		return ctx
	}

	return i18n.WithLanguage(ctx, h.Text.Match(c.Get(fiber.HeaderAcceptLanguage)))
}

// Translator returns msg translated into the language of ctx, handed to templates as .T.
func (h *Host) Translator(ctx context.Context) func(msg string) string {
	return func(msg string) string {
		if h.Text == nil {
			return msg
		}

		return h.Text.T(ctx, msg)
	}
}

// Settings loads the settings record once for the request. A corrupt record is
// logged and replaced by the defaults.
func (h *Host) Settings(ctx context.Context) (*jdeb.Settings, error) {
	s, err := jdeb.Load(ctx, h.DB)
	if errors.Is(err, jdeb.ErrCorruptRecord) {
		log.Warn().Err(err).Str("option", jdeb.OptionName).Msg("corrupt settings record, using defaults")
		return s, nil
	}

	return s, err
}

// PublicAssets fires event (wp_enqueue_scripts or login_enqueue_scripts) and renders the queue.
func (h *Host) PublicAssets(ctx context.Context, event hooks.Event, s *jdeb.Settings) (Assets, error) {
	q := assets.NewQueue(h.StaticURL)
	h.doAction(ctx, event, q, s)

	return render(q)
}

// AdminScreen fires admin_menu, admin_init and admin_enqueue_scripts for the page slug.
func (h *Host) AdminScreen(ctx context.Context, slug string, s *jdeb.Settings) (*AdminScreen, error) {
	screen := &AdminScreen{
		Menu:     settingsapi.NewMenu(),
		Registry: settingsapi.NewRegistry(),
	}

	h.doAction(ctx, hooks.AdminMenu, screen.Menu)

	page, ok := screen.Menu.Page(slug)
	if !ok {
		return nil, ErrPageNotFound
	}

	screen.Page = page

	h.doAction(ctx, hooks.AdminInit, screen.Registry, s)

	q := assets.NewQueue(h.StaticURL)
	h.doAction(ctx, hooks.AdminEnqueueScripts, q, page.HookSuffix)

	var err error
	if screen.Assets, err = render(q); err != nil {
		return nil, err
	}

	return screen, nil
}

// Reset fires the reset hook with the submitted form.
func (h *Host) Reset(ctx context.Context, sub *settingsapi.Submission) {
	h.doAction(ctx, hooks.ResetPluginSettings, sub)
}

// doAction logs callback errors and carries on, the page still renders.
func (h *Host) doAction(ctx context.Context, event hooks.Event, args ...any) {
	if err := h.Hooks.DoAction(ctx, event, args...); err != nil {
		log.Error().Err(err).Str("event", string(event)).Msg("hook callbacks failed")
	}
}

func render(q *assets.Queue) (Assets, error) {
	scripts, err := q.Scripts()
	if err != nil {
		return Assets{}, err
	}

	return Assets{Styles: q.Styles(), Scripts: scripts}, nil
}
