package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the addressed document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists indicates Create targeted an existing document.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrConflict indicates a concurrent commit raced this transaction.
	// The whole transaction may be retried.
	ErrConflict = errors.New("transaction conflict")

	// ErrUnavailable indicates a transaction kept conflicting until the
	// retry budget ran out.
	ErrUnavailable = errors.New("transaction unavailable after retries")

	// ErrStoreUnavailable wraps transport and driver failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrReadAfterWrite indicates a transaction read after it started writing.
	ErrReadAfterWrite = errors.New("transaction read after write")

	// ErrInvalidQuery indicates a query failed validation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidValue indicates a field value of an unsupported type.
	ErrInvalidValue = errors.New("invalid field value")
)

// NotFound returns an ErrNotFound error naming the document.
func NotFound(collection, id string) error {
	return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err wraps ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
