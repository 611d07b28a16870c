package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeAlreadyQueued = "already_queued"
	ErrCodeBadRequest    = "bad_request"
)

var (
	// ErrAlreadyQueued is returned when a client with an existing waiting
	// entry requests another match.
	ErrAlreadyQueued = errors.New("already queued")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
