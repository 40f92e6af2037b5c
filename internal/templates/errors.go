package templates

import "errors"

var (
	// ErrNoActiveTemplate means no template is flagged active.
	ErrNoActiveTemplate = errors.New("no active report template")
	// ErrMalformedTemplate means the stored or imported sections are unusable.
	ErrMalformedTemplate = errors.New("malformed report template")
)
