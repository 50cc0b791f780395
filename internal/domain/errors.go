package domain

import "errors"

// ErrInvalidContext marks a principal snapshot that cannot be evaluated.
// Callers treat it as "no session" and force re-authentication.
var ErrInvalidContext = errors.New("invalid user context")
