package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("clip not found")
	ErrDuplicateClip     = errors.New("clip already exists")
	ErrInvalidClip       = errors.New("invalid clip")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)
