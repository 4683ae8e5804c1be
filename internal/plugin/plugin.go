// Package plugin wires the admin and public parts of the blocker to the host hooks.
package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jdeb-project/jdeb/internal/assets"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/i18n"
	"github.com/jdeb-project/jdeb/internal/nonce"
	"github.com/jdeb-project/jdeb/internal/plugin/admin"
	"github.com/jdeb-project/jdeb/internal/plugin/public"
	"github.com/jdeb-project/jdeb/internal/settingsapi"
)

const (
	// DefaultName is the plugin name, used as handle, slug and text domain.
	DefaultName = "javascript-disposable-email-blocker"
	// DefaultVersion is used when no version is configured.
	DefaultVersion = "1.0.0"
)

var (
	// ErrUnexpectedArg is returned by a callback that received an argument of the wrong type.
	ErrUnexpectedArg = errors.New("unexpected hook argument")
)

// Options configures a Plugin.
type Options struct {
	Name     string
	Version  string
	DB       *gorm.DB
	Nonces   *nonce.Manager
	Text     *i18n.TextDomain
	Filters  admin.Filters
	CheckURL string
}

// Plugin defines the hooks of the blocker. It never dispatches them itself.
type Plugin struct {
	name    string
	version string
	loader  *hooks.Loader
	text    *i18n.TextDomain
	admin   *admin.Admin
	public  *public.Public
}

// New builds the plugin and defines its hooks.
func New(o Options) *Plugin {
	if o.Name == "" {
		o.Name = DefaultName
	}

	if o.Version == "" {
		o.Version = DefaultVersion
	}

	var text admin.Translator
	if o.Text != nil {
		text = o.Text
	}

	p := &Plugin{
		name:    o.Name,
		version: o.Version,
		loader:  hooks.NewLoader(),
		text:    o.Text,
		admin:   admin.New(o.Name, o.Version, o.DB, o.Nonces, text, o.Filters),
		public:  public.New(o.Name, o.Version, o.CheckURL, text),
	}

	p.setLocale()
	p.defineAdminHooks()
	p.definePublicHooks()

	return p
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return p.name }

// Version returns the plugin version.
func (p *Plugin) Version() string { return p.version }

// Loader returns the hook bindings.
func (p *Plugin) Loader() *hooks.Loader { return p.loader }

// Admin returns the admin controller.
func (p *Plugin) Admin() *admin.Admin { return p.admin }

// Public returns the public loader.
func (p *Plugin) Public() *public.Public { return p.public }

// Run hands every binding to the host.
func (p *Plugin) Run(r hooks.Registrar) {
	p.loader.Run(r)

	log.Info().
		Str("plugin", p.name).
		Str("version", p.version).
		Int("actions", len(p.loader.Actions())).
		Int("filters", len(p.loader.Filters())).
		Msg("plugin hooks registered")
}

func (p *Plugin) setLocale() {
	if p.text == nil {
		return
	}

	p.loader.AddAction(hooks.PluginsLoaded, "i18n.load_plugin_textdomain", func(context.Context, ...any) error {
		return p.text.Load()
	})
}

func (p *Plugin) defineAdminHooks() {
	a := p.admin

	p.loader.AddAction(hooks.AdminMenu, "admin.register_settings_page", func(ctx context.Context, args ...any) error {
		menu, err := arg[*settingsapi.Menu](args, 0)
		if err != nil {
			return err
		}

		a.RegisterSettingsPage(ctx, menu)

		return nil
	})

	p.loader.AddAction(hooks.AdminInit, "admin.register_settings", func(ctx context.Context, args ...any) error {
		reg, err := arg[*settingsapi.Registry](args, 0)
		if err != nil {
			return err
		}

		a.RegisterSettings(ctx, reg)

		return nil
	})

	p.loader.AddAction(hooks.AdminInit, "admin.register_sections", func(ctx context.Context, args ...any) error {
		reg, err := arg[*settingsapi.Registry](args, 0)
		if err != nil {
			return err
		}

		a.RegisterSections(ctx, reg)

		return nil
	})

	p.loader.AddAction(hooks.AdminInit, "admin.register_fields", func(ctx context.Context, args ...any) error {
		reg, err := arg[*settingsapi.Registry](args, 0)
		if err != nil {
			return err
		}

		s, err := optArg[*jdeb.Settings](args, 1)
		if err != nil {
			return err
		}

		a.RegisterFields(ctx, reg, s)

		return nil
	}, hooks.WithAcceptedArgs(2))

	p.loader.AddAction(hooks.AdminEnqueueScripts, "admin.enqueue_styles", p.enqueueAdmin(a.EnqueueStyles),
		hooks.WithAcceptedArgs(2))
	p.loader.AddAction(hooks.AdminEnqueueScripts, "admin.enqueue_scripts", p.enqueueAdmin(a.EnqueueScripts),
		hooks.WithAcceptedArgs(2))

	p.loader.AddAction(hooks.ResetPluginSettings, "admin.form_response", func(ctx context.Context, args ...any) error {
		sub, err := arg[*settingsapi.Submission](args, 0)
		if err != nil {
			return err
		}

		a.FormResponse(ctx, sub)

		return nil
	})
}

func (p *Plugin) enqueueAdmin(fn func(context.Context, *assets.Queue, string)) hooks.Action {
	return func(ctx context.Context, args ...any) error {
		q, err := arg[*assets.Queue](args, 0)
		if err != nil {
			return err
		}

		suffix, err := optArg[string](args, 1)
		if err != nil {
			return err
		}

		// only on our own settings page
		if suffix != "" && suffix != settingsapi.HookSuffix(settingsapi.ParentOptionsGeneral, p.name) {
			return nil
		}

		fn(ctx, q, suffix)

		return nil
	}
}

func (p *Plugin) definePublicHooks() {
	enqueue := func(ctx context.Context, args ...any) error {
		q, err := arg[*assets.Queue](args, 0)
		if err != nil {
			return err
		}

		s, err := optArg[*jdeb.Settings](args, 1)
		if err != nil {
			return err
		}

		p.public.EnqueueScripts(ctx, q, s)

		return nil
	}

	p.loader.AddAction(hooks.WPEnqueueScripts, "public.enqueue_scripts", enqueue, hooks.WithAcceptedArgs(2))
	p.loader.AddAction(hooks.LoginEnqueueScripts, "public.enqueue_scripts", enqueue, hooks.WithAcceptedArgs(2))
}

// arg returns args[i] as T. A missing or nil argument is an error.
func arg[T any](args []any, i int) (T, error) {
	var zero T

	if i >= len(args) || args[i] == nil {
		return zero, fmt.Errorf("%w: missing argument %d, want %T", ErrUnexpectedArg, i, zero)
	}

	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrUnexpectedArg, i, args[i], zero)
	}

	return v, nil
}

// optArg is arg for trailing arguments the host may omit.
func optArg[T any](args []any, i int) (T, error) {
	var zero T

	if i >= len(args) || args[i] == nil {
		return zero, nil
	}

	return arg[T](args, i)
}
