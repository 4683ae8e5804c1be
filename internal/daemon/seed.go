package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jdeb-project/jdeb/internal/auth"
	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/db/models"
	"github.com/jdeb-project/jdeb/internal/uniuri"
)

// seed creates the configured administrator when the user table is empty.
func seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	local := auth.NewLocalProvider(db)

	count, err := local.CountUsers(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count users")
	}

	if count > 0 || cfg.Admin.Username == "" {
		return nil
	}

	password := cfg.Admin.Password
	if password == "" {
		password = uniuri.New()
		log.Warn().Str("username", cfg.Admin.Username).Str("password", password).
			Msg("no admin password configured, generated one")
	}

	if _, err = local.CreateUser(ctx, cfg.Admin.Username, cfg.Admin.Email, password, models.RoleAdministrator); err != nil {
		return errors.Wrap(err, "failed to seed admin user")
	}

	log.Info().Str("username", cfg.Admin.Username).Msg("admin user created")

	return nil
}
