// Package assets collects the styles and scripts a page needs and renders their tags.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrUnknownHandle is returned when localizing a script that was not enqueued.
	ErrUnknownHandle = errors.New("unknown script handle")
	// ErrInvalidObjectName is returned for a localize object name that is no JS identifier.
	ErrInvalidObjectName = errors.New("invalid javascript object name")
)

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Style is an enqueued stylesheet.
type Style struct {
	Handle  string
	Src     string
	Deps    []string
	Version string
	Media   string
}

// Localized is a JS object emitted before its script.
type Localized struct {
	Object string
	Data   any
}

// Script is an enqueued script.
type Script struct {
	Handle    string
	Src       string
	Deps      []string
	Version   string
	InFooter  bool
	Localized []Localized
}

// Queue holds the assets of one page render. It is not safe for concurrent use.
type Queue struct {
	baseURL string
	styles  []*Style
	scripts []*Script
}

// NewQueue returns a Queue resolving relative sources against baseURL.
func NewQueue(baseURL string) *Queue {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Queue{baseURL: baseURL}
}

// EnqueueStyle adds a stylesheet. A handle is only enqueued once.
func (q *Queue) EnqueueStyle(handle, src string, deps []string, version, media string) {
	if q.style(handle) != nil {
		return
	}

	if media == "" {
		media = "all"
	}

	q.styles = append(q.styles, &Style{Handle: handle, Src: src, Deps: deps, Version: version, Media: media})
}

// EnqueueScript adds a script. A handle is only enqueued once.
func (q *Queue) EnqueueScript(handle, src string, deps []string, version string, inFooter bool) {
	if q.script(handle) != nil {
		return
	}

	q.scripts = append(q.scripts, &Script{Handle: handle, Src: src, Deps: deps, Version: version, InFooter: inFooter})
}

// LocalizeScript attaches data to an enqueued script. It is rendered as
// `var object = {json};` right before the script tag.
func (q *Queue) LocalizeScript(handle, object string, data any) error {
	s := q.script(handle)
	if s == nil {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}

	if !identifier.MatchString(object) {
		return fmt.Errorf("%w: %q", ErrInvalidObjectName, object)
	}

	s.Localized = append(s.Localized, Localized{Object: object, Data: data})

	return nil
}

// StyleHandles returns the style handles in render order.
func (q *Queue) StyleHandles() []string {
	var out []string
	for _, s := range orderStyles(q.styles) {
		out = append(out, s.Handle)
	}

	return out
}

// ScriptHandles returns the script handles in render order.
func (q *Queue) ScriptHandles() []string {
	var out []string
	for _, s := range orderScripts(q.scripts) {
		out = append(out, s.Handle)
	}

	return out
}

// Script returns the enqueued script with handle.
func (q *Queue) Script(handle string) (Script, bool) {
	s := q.script(handle)
	if s == nil {
		return Script{}, false
	}

	return *s, true
}

// Style returns the enqueued style with handle.
func (q *Queue) Style(handle string) (Style, bool) {
	s := q.style(handle)
	if s == nil {
		return Style{}, false
	}

	return *s, true
}

// URL resolves src and appends the ver query parameter.
func (q *Queue) URL(src, version string) string {
	u := src
	if !strings.Contains(src, "://") && !strings.HasPrefix(src, "/") {
		u = q.baseURL + src
	}

	if version == "" {
		return u
	}

	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}

	return u + sep + "ver=" + url.QueryEscape(version)
}

// Styles renders the link tags.
func (q *Queue) Styles() template.HTML {
	var b strings.Builder

	for _, s := range orderStyles(q.styles) {
		fmt.Fprintf(&b, `<link rel="stylesheet" id="%s-css" href="%s" media="%s" />`+"\n",
			template.HTMLEscapeString(s.Handle),
			template.HTMLEscapeString(q.URL(s.Src, s.Version)),
			template.HTMLEscapeString(s.Media),
		)
	}

	return template.HTML(b.String()) //nolint:gosec // escaped above
}

// Scripts renders the script tags, each preceded by its localized data.
func (q *Queue) Scripts() (template.HTML, error) {
	var b strings.Builder

	for _, s := range orderScripts(q.scripts) {
		for _, l := range s.Localized {
			// json.Marshal escapes <, > and &, so the payload can not close the script element
			data, err := json.Marshal(l.Data)
			if err != nil {
				return "", fmt.Errorf("localize %s: %w", s.Handle, err)
			}

			fmt.Fprintf(&b, `<script id="%s-js-extra">var %s = %s;</script>`+"\n",
				template.HTMLEscapeString(s.Handle), l.Object, data)
		}

		fmt.Fprintf(&b, `<script id="%s-js" src="%s"></script>`+"\n",
			template.HTMLEscapeString(s.Handle),
			template.HTMLEscapeString(q.URL(s.Src, s.Version)),
		)
	}

	return template.HTML(b.String()), nil //nolint:gosec // escaped above
}

func (q *Queue) style(handle string) *Style {
	for _, s := range q.styles {
		if s.Handle == handle {
			return s
		}
	}

	return nil
}

func (q *Queue) script(handle string) *Script {
	for _, s := range q.scripts {
		if s.Handle == handle {
			return s
		}
	}

	return nil
}

func styleKey(s *Style) (string, []string)   { return s.Handle, s.Deps }
func scriptKey(s *Script) (string, []string) { return s.Handle, s.Deps }

func orderStyles(in []*Style) []*Style    { return order(in, styleKey) }
func orderScripts(in []*Script) []*Script { return order(in, scriptKey) }

// order puts dependencies first and keeps enqueue order otherwise.
// Dependencies on handles that were not enqueued are ignored, cycles are broken.
func order[T any](in []T, key func(T) (string, []string)) []T {
	var (
		out      = make([]T, 0, len(in))
		byHandle = make(map[string]T, len(in))
		deps     = make(map[string][]string, len(in))
		done     = make(map[string]bool, len(in))
		visiting = make(map[string]bool)
		visit    func(h string)
	)

	for _, item := range in {
		h, d := key(item)
		byHandle[h] = item
		deps[h] = d
	}

	visit = func(h string) {
		if done[h] || visiting[h] {
			return
		}

		if _, ok := byHandle[h]; !ok {
			return
		}

		visiting[h] = true

		for _, d := range deps[h] {
			visit(d)
		}

		visiting[h] = false
		done[h] = true

		out = append(out, byHandle[h])
	}

	for _, item := range in {
		h, _ := key(item)
		visit(h)
	}

	return out
}

// ContentHash returns a 10 character fingerprint of the named files of fsys.
// Files that can not be read are skipped.
func ContentHash(fsys fs.FS, paths ...string) string {
	h := sha256.New()

	for _, name := range paths {
		if data, err := fs.ReadFile(fsys, name); err == nil {
			h.Write(data)
		}
	}

	return hex.EncodeToString(h.Sum(nil))[:10]
}
