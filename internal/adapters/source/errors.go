package source

import "errors"

// ErrUnavailable is returned when the live endpoint cannot be opened.
// Callers fall back to the synthetic generator; the condition is a
// status flag, not a fatal error.
var ErrUnavailable = errors.New("sample source unavailable")
