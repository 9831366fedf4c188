package replication

import (
	"fmt"

	"github.com/pkg/errors"
)

// InvalidOperation is raised when a caller asks for something the protocol
// does not allow in its current state, e.g. a changeset arriving at a replica
// with no live database, or a full-copy filename containing "..". It is not
// raised for a subdatabase count, and a closed Replica does not raise it.
type InvalidOperation struct {
	msg   string
	cause error
}

func (e *InvalidOperation) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid operation: %s: %s", e.msg, e.cause)
	}
	return "invalid operation: " + e.msg
}

// Cause lets errors.Cause unwrap the underlying error, if any.
func (e *InvalidOperation) Cause() error { return e.cause }

// NewInvalidOperation wraps cause (which may be nil) in an InvalidOperation.
func NewInvalidOperation(msg string, cause error) error {
	return &InvalidOperation{msg: msg, cause: errors.WithStack(cause)}
}

// DatabaseOpeningError is raised when the stub pointer, parameter file, or an
// offline/live subdirectory cannot be created, read, or rewritten.
type DatabaseOpeningError struct {
	msg   string
	cause error
}

func (e *DatabaseOpeningError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("database opening error: %s: %s", e.msg, e.cause)
	}
	return "database opening error: " + e.msg
}

func (e *DatabaseOpeningError) Cause() error { return e.cause }

func NewDatabaseOpeningError(msg string, cause error) error {
	return &DatabaseOpeningError{msg: msg, cause: errors.WithStack(cause)}
}

// FeatureUnavailable is raised when the stub pointer names a backend tag this
// build does not support.
type FeatureUnavailable struct {
	msg string
}

func (e *FeatureUnavailable) Error() string { return "feature unavailable: " + e.msg }

func NewFeatureUnavailable(msg string) error {
	return &FeatureUnavailable{msg: msg}
}

// NetworkError is raised on protocol violations: an unexpected message type,
// a FAIL reply from the peer, or a channel call exceeding its deadline.
type NetworkError struct {
	msg   string
	cause error
}

func (e *NetworkError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("network error: %s: %s", e.msg, e.cause)
	}
	return "network error: " + e.msg
}

func (e *NetworkError) Cause() error { return e.cause }

func NewNetworkError(msg string, cause error) error {
	return &NetworkError{msg: msg, cause: errors.WithStack(cause)}
}
