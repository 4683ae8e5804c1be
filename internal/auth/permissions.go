package auth

import (
	"slices"

	"github.com/jdeb-project/jdeb/internal/db/models"
)

// Capability constants name what a user may do.
const (
	// CapRead allows logging in.
	CapRead = "read"

	// CapManageOptions allows viewing and saving the plugin settings.
	CapManageOptions = "manage_options"
)

// roleCapabilities maps a role to its capabilities.
var roleCapabilities = map[string][]string{ //nolint:gochecknoglobals
	models.RoleAdministrator: {CapRead, CapManageOptions},
	models.RoleSubscriber:    {CapRead},
}

// Capabilities returns the capabilities of role. Unknown roles have none.
func Capabilities(role string) []string {
	return slices.Clone(roleCapabilities[role])
}

// KnownRole reports whether role grants any capability.
func KnownRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// UserCan reports whether the active user u has capability.
func UserCan(u *models.User, capability string) bool {
	if u == nil || !u.Active {
		return false
	}

	return slices.Contains(roleCapabilities[u.Role], capability)
}
