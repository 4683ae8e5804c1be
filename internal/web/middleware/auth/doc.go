// Package auth provides the login redirect middleware of the web application.
//
// The middleware performs the following tasks:
//   - Redirects anonymous requests below /admin to the login page
//   - Redirects logged in users from the login page to the admin area
//   - Adds the session user to fiber.Locals for template access
//   - Leaves the public pages, the api and the logout page alone
//
// Capability checks are done per route by auth.RequireCapability.
//
// Usage:
//
//	app.Use(authmiddleware.Middleware)
package auth
