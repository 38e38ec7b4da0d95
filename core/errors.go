package core

import "errors"

var (
	// ErrNotAuthenticated is returned by Submit when no identity is
	// attached to the connection. Reported to the submitter only.
	ErrNotAuthenticated = errors.New("core: not authenticated")

	ErrUserExists   = errors.New("core: user already exists")
	ErrUserNotFound = errors.New("core: user not found")
)
