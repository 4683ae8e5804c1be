// Package activator writes and removes the settings record of the plugin.
package activator

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
)

// Activate writes the default settings record, overwriting any previous record.
func Activate(ctx context.Context, db *gorm.DB) error {
	defaults := jdeb.Defaults()

	if err := defaults.Save(ctx, db); err != nil {
		return err
	}

	log.Info().Str("option", jdeb.OptionName).Msg("default settings written")

	return nil
}

// Install writes the default settings unless a record is already stored.
// It reports whether the defaults were written.
func Install(ctx context.Context, db *gorm.DB) (bool, error) {
	defaults := jdeb.Defaults()

	added, err := defaults.Add(ctx, db)
	if err != nil {
		return false, err
	}

	if added {
		log.Info().Str("option", jdeb.OptionName).Msg("default settings installed")
	}

	return added, nil
}

// Installed reports whether the settings record exists.
func Installed(ctx context.Context, db *gorm.DB) (bool, error) {
	return jdeb.Exists(ctx, db)
}

// Uninstall removes the settings record.
func Uninstall(ctx context.Context, db *gorm.DB) error {
	if err := jdeb.Delete(ctx, db); err != nil {
		return err
	}

	log.Info().Str("option", jdeb.OptionName).Msg("settings removed")

	return nil
}
