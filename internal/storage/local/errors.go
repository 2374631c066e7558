package local

import "errors"

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when a document exists but is not valid JSON
	ErrCorrupt = errors.New("corrupt document")
)
