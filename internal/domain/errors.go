package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidAction signals an unknown moderation action.
	ErrInvalidAction = errors.New("invalid action")
)
