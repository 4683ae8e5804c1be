// Package public enqueues the client-side blocker script on public pages.
package public

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jdeb-project/jdeb/internal/assets"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
)

const (
	// ScriptSrc is the blocker script, relative to the static root.
	ScriptSrc = "public/js/disposable-email-blocker.min.js"
	// ObjectName is the global the script reads its configuration from.
	ObjectName = "jdeb_settings"
)

// Config is the data handed to the script.
type Config struct {
	DisposableMessage string `json:"disposable_message"`
	WebmailMessage    string `json:"webmail_message"`
	WebmailBlock      string `json:"webmail_block"`
	CheckURL          string `json:"check_url"`
}

// Translator translates strings into the language of a request.
type Translator interface {
	T(ctx context.Context, msg string) string
}

// Public holds the public side of the plugin.
type Public struct {
	pluginName string
	version    string
	checkURL   string
	text       Translator
}

// New returns the public loader. checkURL is the classification endpoint the script calls.
// text may be nil, messages are then handed out as stored.
func New(pluginName, version, checkURL string, text Translator) *Public {
	return &Public{
		pluginName: pluginName,
		version:    version,
		checkURL:   checkURL,
		text:       text,
	}
}

func (p *Public) t(ctx context.Context, msg string) string {
	if p.text == nil {
		return msg
	}

	return p.text.T(ctx, msg)
}

// ConfigFor returns the script configuration for s in the language of ctx.
// A nil s yields the defaults. Custom messages have no catalog entry and pass unchanged.
func (p *Public) ConfigFor(ctx context.Context, s *jdeb.Settings) Config {
	if s == nil {
		d := jdeb.Defaults()
		s = &d
	}

	block := jdeb.Off
	if s.WebmailBlocked() {
		block = jdeb.On
	}

	return Config{
		DisposableMessage: p.t(ctx, s.DisposableMessage),
		WebmailMessage:    p.t(ctx, s.WebmailMessage),
		WebmailBlock:      block,
		CheckURL:          p.checkURL,
	}
}

// EnqueueScripts adds the blocker script and its configuration.
func (p *Public) EnqueueScripts(ctx context.Context, q *assets.Queue, s *jdeb.Settings) {
	q.EnqueueScript(p.pluginName, ScriptSrc, nil, p.version, false)

	if err := q.LocalizeScript(p.pluginName, ObjectName, p.ConfigFor(ctx, s)); err != nil {
		log.Error().Err(err).Str("handle", p.pluginName).Msg("can't localize script")
	}
}
