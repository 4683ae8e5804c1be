// Package settingsapi is the host side of plugin settings screens.
//
// A plugin adds its pages to a Menu on admin_menu and registers its option,
// sections and fields with a Registry on admin_init. The web layer then renders
// the sections of a page, verifies submissions and runs the registered
// sanitize callback before the option is written.
//
// Both Menu and Registry are built per request, so field values always reflect
// the settings record loaded for that request.
package settingsapi
