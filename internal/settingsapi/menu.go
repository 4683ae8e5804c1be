package settingsapi

import (
	"context"
	"html/template"
	"sort"
	"strings"
)

// ParentOptionsGeneral is the slug of the general settings menu.
const ParentOptionsGeneral = "options-general"

// PageRequest is handed to a page callback.
type PageRequest struct {
	Registry  *Registry
	SessionID string
	// Updated is true after a successful save.
	Updated bool
	// Errors are validation messages of a rejected save.
	Errors []string
}

// PageView is the view model of a rendered settings page.
type PageView struct {
	Title       string
	Slug        string
	OptionGroup string
	// Sections is the output of RenderSections.
	Sections template.HTML
	// Hidden holds the hidden inputs of the options form (option_page and nonce).
	Hidden template.HTML
	// ResetNonce is the hidden nonce input of the reset form.
	ResetNonce template.HTML
	Updated    bool
	Errors     []string
}

// PageFunc renders a page.
type PageFunc func(ctx context.Context, req PageRequest) (*PageView, error)

// Page is an admin page added to the menu.
type Page struct {
	ParentSlug string
	PageTitle  string
	MenuTitle  string
	Capability string
	MenuSlug   string
	// HookSuffix is passed to admin_enqueue_scripts when the page renders.
	HookSuffix string
	Render     PageFunc
}

// Menu collects admin pages.
type Menu struct {
	pages []Page
}

// NewMenu returns an empty Menu.
func NewMenu() *Menu {
	return &Menu{}
}

// HookSuffix returns the admin_enqueue_scripts suffix of a sub page.
func HookSuffix(parentSlug, menuSlug string) string {
	prefix := strings.TrimSuffix(parentSlug, ".php")
	if prefix == ParentOptionsGeneral {
		prefix = "settings"
	}

	return prefix + "_page_" + menuSlug
}

// AddSubmenuPage adds a page below parentSlug and returns its hook suffix.
// Adding a slug twice replaces the first page.
func (m *Menu) AddSubmenuPage(parentSlug, pageTitle, menuTitle, capability, menuSlug string, render PageFunc) string {
	p := Page{
		ParentSlug: parentSlug,
		PageTitle:  pageTitle,
		MenuTitle:  menuTitle,
		Capability: capability,
		MenuSlug:   menuSlug,
		HookSuffix: HookSuffix(parentSlug, menuSlug),
		Render:     render,
	}

	for i := range m.pages {
		if m.pages[i].MenuSlug == menuSlug {
			m.pages[i] = p
			return p.HookSuffix
		}
	}

	m.pages = append(m.pages, p)

	return p.HookSuffix
}

// Page returns the page with the given slug.
func (m *Menu) Page(slug string) (Page, bool) {
	for _, p := range m.pages {
		if p.MenuSlug == slug {
			return p, true
		}
	}

	return Page{}, false
}

// Pages returns all pages sorted by menu title.
func (m *Menu) Pages() []Page {
	out := append([]Page(nil), m.pages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MenuTitle < out[j].MenuTitle })

	return out
}
