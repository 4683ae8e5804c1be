package auth

import "errors"

var (
	// ErrUserNameExists is returned when attempting to create a user whose username is taken.
	ErrUserNameExists = errors.New("user with username already exists")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownRole is returned when a user is created with a role that grants nothing.
	ErrUnknownRole = errors.New("unknown role")
)
