package artifacts

import "errors"

// ErrNotFound indicates no matching row exists.
var ErrNotFound = errors.New("artifact not found")
