package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// Returned by the history stores and service; handlers map them to HTTP
// status codes.
// -----------------------------------------------------------------------------

var (
	ErrNoSession     = errors.New("no session for player")
	ErrInvalidStatus = errors.New("invalid session status")
	ErrEmptyPlayer   = errors.New("player name is empty")
)
