package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrEmptyNonceSecret error if no nonce secret is configured outside dev mode.
	ErrEmptyNonceSecret = errors.New("toml config webserver.nonceSecret can not be empty")

	// ErrUnknownGormEngine error if db.gormEngine is none of mysql, postgres or sqlite.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine is unknown")
)
