package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound        = errors.New("row not found")
	ErrConflict        = errors.New("unique constraint violated")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownResource = errors.New("unknown resource")
)
