package settingsapi

import (
	"context"
	"errors"
	"html/template"
	"net/url"
	"strings"
)

var (
	// ErrUnknownOptionGroup is returned for a submission of a group nobody registered.
	ErrUnknownOptionGroup = errors.New("unknown option group")
)

// SanitizeFunc cleans a submitted option value before it is stored.
type SanitizeFunc func(ctx context.Context, value any) any

// FieldArgs are passed to a field render callback.
type FieldArgs struct {
	ID          string
	Name        string
	Value       string
	Checked     string
	Description string
}

// FieldFunc renders the input of a field.
type FieldFunc func(args FieldArgs) template.HTML

// Setting binds an option to an option group.
type Setting struct {
	Group    string
	Option   string
	Sanitize SanitizeFunc
}

// Section groups fields on a page. Title is trusted markup.
type Section struct {
	ID    string
	Title template.HTML
	Page  string
}

// Field is a single form row. Title is trusted markup.
type Field struct {
	ID      string
	Title   template.HTML
	Render  FieldFunc
	Page    string
	Section string
	Args    FieldArgs
}

// Registry collects settings, sections and fields.
type Registry struct {
	settings []Setting
	sections []Section
	fields   []Field
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterSetting registers option as part of group. sanitize may be nil.
func (r *Registry) RegisterSetting(group, option string, sanitize SanitizeFunc) {
	r.settings = append(r.settings, Setting{Group: group, Option: option, Sanitize: sanitize})
}

// Setting returns the setting registered for group.
func (r *Registry) Setting(group string) (Setting, bool) {
	for _, s := range r.settings {
		if s.Group == group {
			return s, true
		}
	}

	return Setting{}, false
}

// Sanitize runs the sanitize callback of group on value.
func (r *Registry) Sanitize(ctx context.Context, group string, value any) (any, error) {
	s, ok := r.Setting(group)
	if !ok {
		return nil, ErrUnknownOptionGroup
	}

	if s.Sanitize == nil {
		return value, nil
	}

	return s.Sanitize(ctx, value), nil
}

// AddSection adds a section to page.
func (r *Registry) AddSection(id string, title template.HTML, page string) {
	r.sections = append(r.sections, Section{ID: id, Title: title, Page: page})
}

// AddField adds a field to a section of page.
func (r *Registry) AddField(id string, title template.HTML, render FieldFunc, page, section string, args FieldArgs) {
	r.fields = append(r.fields, Field{
		ID:      id,
		Title:   title,
		Render:  render,
		Page:    page,
		Section: section,
		Args:    args,
	})
}

// Sections returns the sections of page in registration order.
func (r *Registry) Sections(page string) []Section {
	var out []Section

	for _, s := range r.sections {
		if s.Page == page {
			out = append(out, s)
		}
	}

	return out
}

// Fields returns the fields of a section in registration order.
func (r *Registry) Fields(page, section string) []Field {
	var out []Field

	for _, f := range r.fields {
		if f.Page == page && f.Section == section {
			out = append(out, f)
		}
	}

	return out
}

// RenderSections renders every section of page as a heading and a form table.
func (r *Registry) RenderSections(page string) template.HTML {
	var b strings.Builder

	for _, s := range r.Sections(page) {
		if s.Title != "" {
			b.WriteString("<h2>" + string(s.Title) + "</h2>\n")
		}

		b.WriteString(`<table class="form-table" role="presentation">` + "\n")

		for _, f := range r.Fields(page, s.ID) {
			b.WriteString("<tr>")

			if f.Args.ID != "" {
				b.WriteString(`<th scope="row"><label for="` + EscAttr(f.Args.ID) + `">` + string(f.Title) + "</label></th>")
			} else {
				b.WriteString(`<th scope="row">` + string(f.Title) + "</th>")
			}

			b.WriteString("<td>")

			if f.Render != nil {
				b.WriteString(string(f.Render(f.Args)))
			}

			b.WriteString("</td></tr>\n")
		}

		b.WriteString("</table>\n")
	}

	return template.HTML(b.String()) //nolint:gosec // titles are trusted, field output is escaped by its callback
}

// OptionsAction returns the nonce action protecting the options form of group.
func OptionsAction(group string) string {
	return group + "-options"
}

// Submission is a submitted admin form.
type Submission struct {
	Form      url.Values
	SessionID string
}

// Has reports whether field was submitted, even empty.
func (s *Submission) Has(field string) bool {
	if s == nil {
		return false
	}

	_, ok := s.Form[field]

	return ok
}

// Get returns the first value of field.
func (s *Submission) Get(field string) string {
	if s == nil {
		return ""
	}

	return s.Form.Get(field)
}
