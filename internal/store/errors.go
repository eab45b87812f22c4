package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalid indicates the database rejected a value, e.g. a failed CHECK constraint.
	ErrInvalid = errors.New("invalid record")
)
