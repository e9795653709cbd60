package entities

import "errors"

// Error kinds shared by every layer. Use-case sentinels wrap these so callers
// can classify with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrHasDependents = errors.New("has dependents")
)
