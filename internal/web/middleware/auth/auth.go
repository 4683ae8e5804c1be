package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jdeb-project/jdeb/internal/web/handler"
	"github.com/jdeb-project/jdeb/internal/web/handler/login"
	"github.com/jdeb-project/jdeb/internal/web/handler/logout"
	"github.com/jdeb-project/jdeb/internal/web/session"
)

// Middleware is a Fiber middleware that sends anonymous visitors of the admin area to
// the login page and logged in users away from it. Public pages pass unchanged.
func Middleware(c *fiber.Ctx) error {
	if IsLogoutPage(c) {
		return c.Next()
	}

	isLoginPage := IsLoginPage(c)
	if !isLoginPage && !IsAdminPage(c) {
		return c.Next()
	}

	sessData, _, err := session.Current(c)
	if err != nil {
		// If we're already on the login page, don't redirect (would cause loop)
		if isLoginPage {
			return c.Next()
		}

		return c.Redirect(login.Path)
	}

	// Add the current user to locals for template access
	c.Locals("CurrentUser", sessData.User)

	if isLoginPage {
		return c.Redirect(handler.AdminPath)
	}

	return c.Next()
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	return hasPathPrefix(c, login.Path)
}

// IsLogoutPage checks if the current request is for the logout page.
func IsLogoutPage(c *fiber.Ctx) bool {
	return hasPathPrefix(c, logout.Path)
}

// IsAdminPage checks if the current request is inside the admin area.
func IsAdminPage(c *fiber.Ctx) bool {
	return hasPathPrefix(c, handler.AdminPath)
}

func hasPathPrefix(c *fiber.Ctx, prefix string) bool {
	p := strings.ToLower(c.Path())
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
