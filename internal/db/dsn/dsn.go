// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jdeb-project/jdeb/internal/config"
)

// Create builds the Data Source Name for the configured gorm engine.
// For sqlite the database name is the file path.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return Postgres(cfg.DB)
	case config.EngineSQLite:
		return cfg.DB.Name
	default:
		return MySQL(cfg.DB)
	}
}

// MySQL builds a go-sql-driver/mysql DSN.
func MySQL(db config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
	)

	if db.Extras != "" {
		out += "?" + strings.TrimPrefix(db.Extras, "?")
	}

	return out
}

// Postgres builds a postgres connection URI as accepted by pgx.
func Postgres(db config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: strings.TrimPrefix(db.Extras, "?"),
	}

	return u.String()
}
