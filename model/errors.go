package model

import "errors"

// Sentinel errors for the package's failure taxonomy. Operations wrap
// these with context via fmt.Errorf and %w; callers classify with
// errors.Is.
var (
	// ErrNotFound reports an element, cell, or section address that does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports a request that is malformed regardless
	// of document state, such as a zero-size table or a negative indent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorrupt reports input that cannot be interpreted as a document
	// package.
	ErrCorrupt = errors.New("corrupt document")

	// ErrIO reports a filesystem or archive failure.
	ErrIO = errors.New("i/o failure")
)
