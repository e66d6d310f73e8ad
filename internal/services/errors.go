package services

import (
	"errors"
)

// Error kinds returned by the services. Callers match them with errors.Is;
// the wrapped message is safe to show to clients.
var (
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)
