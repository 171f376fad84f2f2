package types

import "errors"

// Common storage errors
var (
	// ErrObjectNotFound is returned when an object is not found in storage.
	ErrObjectNotFound = errors.New("object not found")

	// ErrUnreachable is returned when the record store cannot be reached.
	// Callers must surface it rather than treat the operation as a clean
	// miss; a duplicate check against an unreachable store proves nothing.
	ErrUnreachable = errors.New("record store unreachable")
)
