// Package hooks implements named extension points: a Loader that accumulates
// bindings declaratively and a Host that dispatches them.
package hooks

// Event names an action or filter hook.
type Event string

// Events fired by the host at fixed points of a request.
const (
	PluginsLoaded       Event = "plugins_loaded"
	AdminMenu           Event = "admin_menu"
	AdminInit           Event = "admin_init"
	AdminEnqueueScripts Event = "admin_enqueue_scripts"
	WPEnqueueScripts    Event = "wp_enqueue_scripts"
	LoginEnqueueScripts Event = "login_enqueue_scripts"

	// ResetPluginSettings is fired by the settings page reset form.
	ResetPluginSettings Event = "reset_plugin_settings_hook"
)

// EventInfo describes a known event.
type EventInfo struct {
	Event       Event
	Description string
	// Lifecycle is true for events fired by the host itself, false for plugin defined ones.
	Lifecycle bool
	// Args lists the arguments passed to callbacks, in order.
	Args []string
}

// AllEvents returns every event fired by the host.
func AllEvents() []EventInfo {
	return []EventInfo{
		{
			Event:       PluginsLoaded,
			Description: "Fired once at startup after all plugins were wired",
			Lifecycle:   true,
		},
		{
			Event:       AdminMenu,
			Description: "Fired on admin requests to collect the admin pages",
			Lifecycle:   true,
			Args:        []string{"*settingsapi.Menu"},
		},
		{
			Event:       AdminInit,
			Description: "Fired on admin requests to register settings, sections and fields",
			Lifecycle:   true,
			Args:        []string{"*settingsapi.Registry", "*jdeb.Settings"},
		},
		{
			Event:       AdminEnqueueScripts,
			Description: "Fired when an admin page collects its styles and scripts",
			Lifecycle:   true,
			Args:        []string{"*assets.Queue", "hook suffix"},
		},
		{
			Event:       WPEnqueueScripts,
			Description: "Fired when a public page collects its styles and scripts",
			Lifecycle:   true,
			Args:        []string{"*assets.Queue", "*jdeb.Settings"},
		},
		{
			Event:       LoginEnqueueScripts,
			Description: "Fired when the login page collects its styles and scripts",
			Lifecycle:   true,
			Args:        []string{"*assets.Queue", "*jdeb.Settings"},
		},
		{
			Event:       ResetPluginSettings,
			Description: "Fired when the settings reset form is submitted",
			Lifecycle:   false,
			Args:        []string{"*settingsapi.Submission"},
		},
	}
}

// IsLifecycleEvent reports whether e is fired by the host itself.
func IsLifecycleEvent(e Event) bool {
	for _, info := range AllEvents() {
		if info.Event == e {
			return info.Lifecycle
		}
	}

	return false
}

// IsKnownEvent reports whether e is one of AllEvents.
func IsKnownEvent(e Event) bool {
	for _, info := range AllEvents() {
		if info.Event == e {
			return true
		}
	}

	return false
}
