// Package navigation provides utilities for managing navigation state and breadcrumbs.
package navigation

import (
	"github.com/jdeb-project/jdeb/internal/settingsapi"
)

const (
	// SectionSettings is the admin section holding the plugin settings pages.
	SectionSettings = "settings"

	// AdminSettingsPath prefixes every settings page slug.
	AdminSettingsPath = "/admin/settings/"
)

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// MenuItem is an entry of the admin sidebar.
type MenuItem struct {
	Title  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	Menu          []MenuItem
	PageTitle     string
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// ForSettingsPage returns the context of the settings page slug, with the sidebar
// built from every page in menu the user may see.
func ForSettingsPage(menu *settingsapi.Menu, slug string, can func(capability string) bool) *Context {
	title := slug
	if p, ok := menu.Page(slug); ok {
		title = p.PageTitle
	}

	ctx := NewContext(title, SectionSettings, slug).
		AddBreadcrumb("Settings", "", false).
		AddBreadcrumb(title, PagePath(slug), true)

	for _, p := range menu.Pages() {
		if can != nil && !can(p.Capability) {
			continue
		}

		ctx.Menu = append(ctx.Menu, MenuItem{
			Title:  p.MenuTitle,
			URL:    PagePath(p.MenuSlug),
			Active: p.MenuSlug == slug,
		})
	}

	return ctx
}

// PagePath returns the url path of a settings page.
func PagePath(slug string) string {
	return AdminSettingsPath + slug
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
