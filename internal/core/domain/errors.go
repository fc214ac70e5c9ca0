// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Error kinds for backend and mutation failures. Adapters and services
// wrap these with fmt.Errorf("...: %w", ...) so callers can classify
// with errors.Is while keeping the full failure chain.
var (
	// ErrNetworkFailure marks a transport-level failure reaching a backend.
	ErrNetworkFailure = errors.New("network failure")

	// ErrBackendRejected marks a non-success response from a backend,
	// including concurrency conflicts on tokened writes.
	ErrBackendRejected = errors.New("backend rejected request")

	// ErrMalformedPayload marks a response body that is not valid JSON or
	// not one of the accepted document shapes.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrValidation marks user input missing a required field.
	ErrValidation = errors.New("validation failure")

	// ErrImportFormat marks an import payload that is not a top-level array.
	ErrImportFormat = errors.New("import payload must be a JSON array")

	// ErrTimeout marks a backend call that exceeded its deadline.
	ErrTimeout = errors.New("backend call timed out")

	// ErrNotFound marks a lookup for an identifier not in the collection.
	ErrNotFound = errors.New("item not found")

	// ErrConfirmationRequired marks a destructive operation attempted
	// without the caller's explicit confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
)

// ErrConflict marks a write rejected by a version-tokened backend
// because the held token went stale. It is a BackendRejected kind, so
// errors.Is(err, ErrBackendRejected) also holds.
var ErrConflict = fmt.Errorf("stale version token: %w", ErrBackendRejected)

// IsConflict reports whether err was caused by a stale version token.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound reports whether err means the item does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
