package serverutils

import "errors"

// Sentinel errors services return to signal HTTP semantics without importing
// fiber. Wrap them with fmt.Errorf("...: %w", ErrNotFound) to add context.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
)
