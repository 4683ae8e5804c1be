package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jdeb-project/jdeb/internal/web/session"
)

const (
	// LocalsUser is the fiber.Locals key of the authenticated *models.User.
	LocalsUser = "CurrentUser"
	// LocalsSessionID is the fiber.Locals key of the session id, nonces are bound to it.
	LocalsSessionID = "SessionID"
	// LocalsCapabilities is the fiber.Locals key of the user capabilities.
	LocalsCapabilities = "Capabilities"
)

// RequireCapability creates Fiber middleware that requires a specific capability.
func RequireCapability(authService *Service, capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionData, sessionID, err := session.Current(c)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("no valid session")
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		user, err := authService.User(c.UserContext(), sessionData.User.ID)
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).Str("capability", capability).
				Msg("Failed to check capability")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !UserCan(user, capability) {
			log.Warn().Uint64("user_id", user.ID).Str("capability", capability).
				Msg("User lacks required capability")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		c.Locals(LocalsUser, user)
		c.Locals(LocalsSessionID, sessionID)

		return c.Next()
	}
}

// AddCapabilitiesToLocals stores the capabilities of the session user in fiber.Locals for templates.
// Requests without a session pass through unchanged.
func AddCapabilitiesToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionData, _, err := session.Current(c)
		if err != nil {
			return c.Next()
		}

		caps, err := authService.UserCapabilities(c.UserContext(), sessionData.User.ID)
		if err != nil {
			log.Debug().Err(err).Uint64("user_id", sessionData.User.ID).Msg("Failed to load capabilities")
			return c.Next()
		}

		capMap := make(map[string]bool, len(caps))
		for _, capability := range caps {
			capMap[capability] = true
		}

		c.Locals(LocalsCapabilities, capMap)

		return c.Next()
	}
}
