// Package auth authenticates administrators against the users table and maps
// their role to capabilities.
//
// A role grants a fixed set of capabilities:
//   - administrator: read, manage_options
//   - subscriber: read
//
// Routes are protected with RequireCapability, which reads the session
// written at login and checks the capability against the stored user, so a
// role change applies to running sessions.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	app.Get("/admin/settings/:slug",
//	    auth.RequireCapability(authService, auth.CapManageOptions),
//	    handler,
//	)
package auth
