package domain

import "errors"

// Error taxonomy shared by services, repositories and handlers. Handlers map
// these onto HTTP status codes; a suspected-duplicate response is not an
// error and never travels through these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not authorized to access this route")
	ErrNotFound     = errors.New("not found")

	ErrSessionExists = errors.New("check-in already exists for this day")
	ErrSessionClosed = errors.New("session already checked out")
	ErrBreakOpen     = errors.New("a break is already active")
	ErrEmailInUse    = errors.New("email already in use")
)
