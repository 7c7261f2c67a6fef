package domain

import "errors"

// Error kinds raised by entities and use cases. Callers match them with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrEmptyValue        = errors.New("empty value")
	ErrInvalidValue      = errors.New("invalid value")
	ErrConflict          = errors.New("conflict")
)
