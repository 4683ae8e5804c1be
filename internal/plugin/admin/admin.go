// Package admin is the settings screen of the plugin: its menu entry, option,
// section, fields, assets and the reset form handling.
package admin

import (
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jdeb-project/jdeb/internal/assets"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/nonce"
	"github.com/jdeb-project/jdeb/internal/plugin/activator"
	"github.com/jdeb-project/jdeb/internal/settingsapi"
)

const (
	// OptionGroup is the settings group of the options form.
	OptionGroup = "javascript_disposable_email_blocker"
	// SectionID is the id of the only settings section.
	SectionID = "javascript_disposable_email_blocker"
	// Capability is required to see and save the settings page.
	Capability = "manage_options"
	// PageTitle is the untranslated page and menu title.
	PageTitle = "Javascript Disposable Email Blocker"

	// ResetField is the submit field of the reset form.
	ResetField = "reset_options"
	// ResetNonceField carries the reset token.
	ResetNonceField = "reset_options_nonce"
	// ResetAction is the nonce action of the reset form.
	ResetAction = "reset_options_action"
	// OptionsNonceField carries the token of the options form.
	OptionsNonceField = "_nonce"

	// StyleSrc is the admin stylesheet, relative to the static root.
	StyleSrc = "admin/css/javascript-disposable-email-blocker-admin.css"
	// ScriptSrc is the admin script, relative to the static root.
	ScriptSrc = "admin/js/disposable-email-blocker.min.js"

	// Field ids of the settings API.
	FieldDisposableMessage = "jdeb_disposable_message"
	FieldWebmailMessage    = "jdeb_webmail_message"
	FieldWebmailBlock      = "jdeb_webmail_block"
)

// Translator translates strings into the language of a request.
type Translator interface {
	T(ctx context.Context, msg string) string
}

// Filters applies string filters. hooks.Host implements it.
type Filters interface {
	ApplyFiltersString(ctx context.Context, event hooks.Event, value string, args ...any) string
}

// Admin holds the admin side of the plugin.
type Admin struct {
	pluginName string
	version    string
	db         *gorm.DB
	nonces     *nonce.Manager
	text       Translator
	filters    Filters
}

// New returns the admin controller. pluginName doubles as the page slug.
func New(pluginName, version string, db *gorm.DB, nonces *nonce.Manager, text Translator, filters Filters) *Admin {
	return &Admin{
		pluginName: pluginName,
		version:    version,
		db:         db,
		nonces:     nonces,
		text:       text,
		filters:    filters,
	}
}

// Slug returns the settings page slug.
func (a *Admin) Slug() string {
	return a.pluginName
}

// FilterNames returns the names a label filter is applied under, in order:
// <plugin>label-block as existing extensions bind it, then <plugin>-label-block.
func (a *Admin) FilterNames(suffix string) []hooks.Event {
	return []hooks.Event{
		hooks.Event(a.pluginName + suffix),
		hooks.Event(a.pluginName + "-" + suffix),
	}
}

func (a *Admin) t(ctx context.Context, msg string) string {
	if a.text == nil {
		return msg
	}

	return a.text.T(ctx, msg)
}

// label translates msg, escapes it and runs it through the filter with suffix.
func (a *Admin) label(ctx context.Context, suffix, msg string) template.HTML {
	out := settingsapi.EscHTML(a.t(ctx, msg))
	if a.filters != nil {
		for _, name := range a.FilterNames(suffix) {
			out = a.filters.ApplyFiltersString(ctx, name, out)
		}
	}

	return template.HTML(out) //nolint:gosec // escaped, filters return markup
}

// RegisterSettingsPage adds the settings page below the general settings menu.
func (a *Admin) RegisterSettingsPage(ctx context.Context, menu *settingsapi.Menu) string {
	title := a.t(ctx, PageTitle)

	return menu.AddSubmenuPage(
		settingsapi.ParentOptionsGeneral,
		title,
		title,
		Capability,
		a.pluginName,
		a.DisplaySettingsPage,
	)
}

// RegisterSettings registers the option with its sanitize callback.
func (a *Admin) RegisterSettings(_ context.Context, reg *settingsapi.Registry) {
	reg.RegisterSetting(OptionGroup, jdeb.OptionName, a.Sanitize)
}

// RegisterSections adds the configuration section.
func (a *Admin) RegisterSections(ctx context.Context, reg *settingsapi.Registry) {
	reg.AddSection(SectionID, a.label(ctx, "section-title-options", "Configuration"), a.pluginName)
}

// RegisterFields adds the message inputs and the webmail checkbox, filled from s.
func (a *Admin) RegisterFields(ctx context.Context, reg *settingsapi.Registry, s *jdeb.Settings) {
	if s == nil {
		d := jdeb.Defaults()
		s = &d
	}

	reg.AddField(
		FieldDisposableMessage,
		a.label(ctx, "label-disposable", "Disposable Error Message"),
		a.DisposableMessageInput,
		a.pluginName,
		SectionID,
		settingsapi.FieldArgs{
			Description: "This message displays on the input if the email is Disposable.",
			Name:        jdeb.FieldName(jdeb.KeyDisposableMessage),
			ID:          jdeb.KeyDisposableMessage,
			Value:       s.DisposableMessage,
		},
	)

	reg.AddField(
		FieldWebmailMessage,
		a.label(ctx, "label-webmail", "Webmail Error Message"),
		a.WebmailMessageInput,
		a.pluginName,
		SectionID,
		settingsapi.FieldArgs{
			Description: "This message displays on the input if the email is Webmail.",
			Name:        jdeb.FieldName(jdeb.KeyWebmailMessage),
			ID:          jdeb.KeyWebmailMessage,
			Value:       s.WebmailMessage,
		},
	)

	reg.AddField(
		FieldWebmailBlock,
		a.label(ctx, "label-block", "Webmail Block"),
		a.WebmailBlockCheckbox,
		a.pluginName,
		SectionID,
		settingsapi.FieldArgs{
			Description: a.t(ctx, "This Detect and Block webmail emails."),
			Name:        jdeb.FieldName(jdeb.KeyWebmailBlock),
			ID:          jdeb.KeyWebmailBlock,
			Checked:     s.WebmailBlock,
		},
	)
}

func textInput(args settingsapi.FieldArgs) template.HTML {
	return template.HTML(fmt.Sprintf( //nolint:gosec // every value is escaped
		`<input class="regular-text" type="text" name="%s" id="%s" value="%s" />`,
		settingsapi.EscAttr(args.Name),
		settingsapi.EscAttr(args.ID),
		settingsapi.EscAttr(args.Value),
	))
}

// DisposableMessageInput renders the disposable message input.
func (a *Admin) DisposableMessageInput(args settingsapi.FieldArgs) template.HTML {
	return textInput(args)
}

// WebmailMessageInput renders the webmail message input.
func (a *Admin) WebmailMessageInput(args settingsapi.FieldArgs) template.HTML {
	return textInput(args)
}

// WebmailBlockCheckbox renders the webmail block checkbox, checked when args.Checked is on.
func (a *Admin) WebmailBlockCheckbox(args settingsapi.FieldArgs) template.HTML {
	return template.HTML(fmt.Sprintf( //nolint:gosec // every value is escaped
		`<label><input type="checkbox" id="%s" name="%s" value="on"%s /> <span class="description">%s</span></label>`,
		settingsapi.EscAttr(args.ID),
		settingsapi.EscAttr(args.Name),
		settingsapi.Checked(jdeb.On, args.Checked),
		settingsapi.EscHTML(args.Description),
	))
}

// Sanitize is the sanitize callback of the option. It accepts jdeb.Settings or a pointer to it.
func (a *Admin) Sanitize(_ context.Context, value any) any {
	switch v := value.(type) {
	case jdeb.Settings:
		return v.Sanitize()
	case *jdeb.Settings:
		if v != nil {
			return v.Sanitize()
		}
	}

	log.Warn().Str("type", fmt.Sprintf("%T", value)).Msg("unexpected settings value, using defaults")

	return jdeb.Defaults()
}

// FormResponse restores the defaults when the reset form was submitted with a valid token.
// Anything else is ignored without feedback.
func (a *Admin) FormResponse(ctx context.Context, sub *settingsapi.Submission) {
	if !sub.Has(ResetField) {
		return
	}

	if a.nonces == nil || !a.nonces.Valid(sub.Get(ResetNonceField), ResetAction, sub.SessionID) {
		log.Debug().Str("action", ResetAction).Msg("reset ignored, invalid nonce")
		return
	}

	if err := activator.Activate(ctx, a.db); err != nil {
		log.Error().Err(err).Msg("can't restore default settings")
		return
	}

	log.Info().Str("option", jdeb.OptionName).Msg("settings reset to defaults")
}

// EnqueueStyles adds the admin stylesheet.
func (a *Admin) EnqueueStyles(_ context.Context, q *assets.Queue, _ string) {
	q.EnqueueStyle(a.pluginName, StyleSrc, nil, a.version, "all")
}

// EnqueueScripts adds the admin script.
func (a *Admin) EnqueueScripts(_ context.Context, q *assets.Queue, _ string) {
	q.EnqueueScript(a.pluginName, ScriptSrc, nil, a.version, false)
}

// DisplaySettingsPage builds the view of the settings page.
func (a *Admin) DisplaySettingsPage(ctx context.Context, req settingsapi.PageRequest) (*settingsapi.PageView, error) {
	if req.Registry == nil {
		return nil, fmt.Errorf("settings page %s: registry is nil", a.pluginName)
	}

	view := &settingsapi.PageView{
		Title:       a.t(ctx, PageTitle),
		Slug:        a.pluginName,
		OptionGroup: OptionGroup,
		Sections:    req.Registry.RenderSections(a.pluginName),
		Updated:     req.Updated,
		Errors:      req.Errors,
	}

	if a.nonces != nil {
		view.Hidden = template.HTML( //nolint:gosec // constant markup and escaped group
			`<input type="hidden" name="option_page" value="`+settingsapi.EscAttr(OptionGroup)+`" />`) +
			a.nonces.Field(settingsapi.OptionsAction(OptionGroup), OptionsNonceField, req.SessionID)
		view.ResetNonce = a.nonces.Field(ResetAction, ResetNonceField, req.SessionID)
	}

	return view, nil
}
