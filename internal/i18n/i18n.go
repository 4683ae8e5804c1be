// Package i18n loads the text domain of the plugin and translates its strings.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed languages/*.json
var embeddedCatalogs embed.FS

type ctxKey struct{}

// WithLanguage returns a context carrying tag.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// LanguageFrom returns the tag stored by WithLanguage, or language.Und.
func LanguageFrom(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag
	}

	return language.Und
}

// TextDomain holds the translations of one domain.
// Catalog files are named <domain>-<lang>.json and map source strings to translations.
type TextDomain struct {
	mu       sync.RWMutex
	domain   string
	fallback language.Tag
	fsys     fs.FS
	builder  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	loaded   bool
}

// New returns an unloaded TextDomain reading the embedded catalogs.
func New(domain, fallback string) (*TextDomain, error) {
	return NewFS(domain, fallback, embeddedCatalogs)
}

// NewFS returns an unloaded TextDomain reading catalogs from fsys/languages.
func NewFS(domain, fallback string, fsys fs.FS) (*TextDomain, error) {
	tag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("fallback locale %q: %w", fallback, err)
	}

	return &TextDomain{
		domain:   domain,
		fallback: tag,
		fsys:     fsys,
		builder:  catalog.NewBuilder(catalog.Fallback(tag)),
		tags:     []language.Tag{tag},
		matcher:  language.NewMatcher([]language.Tag{tag}),
	}, nil
}

// Domain returns the text domain name.
func (d *TextDomain) Domain() string {
	return d.domain
}

// Load reads all catalogs of the domain. Loading twice is a no-op.
func (d *TextDomain) Load() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		return nil
	}

	files, err := fs.Glob(d.fsys, "languages/"+d.domain+"-*.json")
	if err != nil {
		return err
	}

	for _, file := range files {
		lang := strings.TrimSuffix(strings.TrimPrefix(path.Base(file), d.domain+"-"), ".json")

		tag, parseErr := language.Parse(lang)
		if parseErr != nil {
			return fmt.Errorf("catalog %s: %w", file, parseErr)
		}

		data, readErr := fs.ReadFile(d.fsys, file)
		if readErr != nil {
			return readErr
		}

		var messages map[string]string
		if err = json.Unmarshal(data, &messages); err != nil {
			return fmt.Errorf("catalog %s: %w", file, err)
		}

		for key, msg := range messages {
			if err = d.builder.SetString(tag, key, msg); err != nil {
				return fmt.Errorf("catalog %s key %q: %w", file, key, err)
			}
		}

		if tag != d.fallback {
			d.tags = append(d.tags, tag)
		}

		log.Debug().Str("domain", d.domain).Str("lang", tag.String()).Int("messages", len(messages)).Msg("text domain loaded")
	}

	d.matcher = language.NewMatcher(d.tags)
	d.loaded = true

	return nil
}

// Loaded reports whether Load ran.
func (d *TextDomain) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.loaded
}

// Languages returns the supported tags, fallback first.
func (d *TextDomain) Languages() []language.Tag {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]language.Tag(nil), d.tags...)
}

// Match negotiates the best supported tag for an Accept-Language header value.
func (d *TextDomain) Match(acceptLanguage string) language.Tag {
	d.mu.RLock()
	defer d.mu.RUnlock()

	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return d.fallback
	}

	_, idx, confidence := d.matcher.Match(prefs...)
	if confidence == language.No {
		return d.fallback
	}

	return d.tags[idx]
}

// Translate returns msg in language tag. Unknown messages are returned unchanged.
func (d *TextDomain) Translate(tag language.Tag, msg string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if tag == language.Und {
		tag = d.fallback
	}

	p := message.NewPrinter(tag, message.Catalog(d.builder))

	// the message is used as format when no translation exists
	return p.Sprintf(message.Key(msg, strings.ReplaceAll(msg, "%", "%%")))
}

// T translates msg into the language carried by ctx.
func (d *TextDomain) T(ctx context.Context, msg string) string {
	return d.Translate(LanguageFrom(ctx), msg)
}
