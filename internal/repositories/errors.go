package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by conditional updates when the stored version
	// no longer matches the one the caller read.
	ErrConflict = errors.New("record modified concurrently")
)
