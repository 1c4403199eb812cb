package domain

import "errors"

// Sentinel errors for domain-level discrimination. Services wrap these so
// handlers can pick an HTTP status without inspecting infrastructure errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)
