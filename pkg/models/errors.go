package models

import "errors"

// Error taxonomy shared by the store, workflow, and HTTP layer. Handlers map
// these with errors.Is: ErrNotFound to 404, ErrPermissionDenied to 403 and
// ErrInvalidInput to 400.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
)
