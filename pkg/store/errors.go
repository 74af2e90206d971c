package store

// StoreError represents a domain error from record store operations.
//
// These are business-level failures (record not found, collection
// unreachable) as opposed to raw infrastructure errors. The request handler
// translates StoreError codes into the fixed user-facing messages of the
// wire protocol; the underlying cause is logged server-side only.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// User is the collection owner related to the error (if applicable)
	User string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.User != "" {
		return e.Message + ": user " + e.User
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the record does not exist or, for Delete,
	// that it could not be removed. The contract deliberately collapses
	// "never existed" and "existed but failed to delete" into one code.
	ErrNotFound ErrorCode = iota

	// ErrUnavailable indicates the user's collection itself cannot be
	// created or reached (permissions, disk full, invalid name).
	ErrUnavailable

	// ErrIOError indicates a read or write on an individual record failed.
	ErrIOError
)

// NotFound builds a StoreError with the ErrNotFound code.
func NotFound(message, user string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: message, User: user}
}

// Unavailable builds a StoreError with the ErrUnavailable code.
func Unavailable(message, user string) *StoreError {
	return &StoreError{Code: ErrUnavailable, Message: message, User: user}
}

// IOError builds a StoreError with the ErrIOError code.
func IOError(message, user string) *StoreError {
	return &StoreError{Code: ErrIOError, Message: message, User: user}
}
