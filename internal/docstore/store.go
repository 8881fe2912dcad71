package docstore

import "context"

// Store is the document store contract.
type Store interface {
	// NewID allocates a fresh document id for collection without writing.
	NewID(collection string) string

	// Get returns the document or an error wrapping ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create writes a new document, failing with ErrAlreadyExists if present.
	Create(ctx context.Context, collection, id string, fields Fields) error

	// Set writes a document, replacing any existing content.
	Set(ctx context.Context, collection, id string, fields Fields) error

	// Update applies field updates to an existing document.
	// Returns an error wrapping ErrNotFound if the document is absent.
	Update(ctx context.Context, collection, id string, updates ...Update) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Query returns documents matching q in the requested order.
	Query(ctx context.Context, q Query) ([]Document, error)

	// RunTransaction runs fn once and commits its buffered writes atomically.
	// Returns ErrConflict if a document read by fn changed before commit.
	// An error returned by fn aborts the transaction and is returned as-is.
	RunTransaction(ctx context.Context, fn TxFunc) error
}

// Tx is the handle passed to a transaction function.
//
// Reads must precede writes: Get after any write returns ErrReadAfterWrite.
type Tx interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(collection, id string, fields Fields) error
	Set(collection, id string, fields Fields) error
	Update(collection, id string, updates ...Update) error
	Delete(collection, id string) error
}

// TxFunc is the body of a transaction.
type TxFunc func(ctx context.Context, tx Tx) error

// Document is a stored document snapshot.
type Document struct {
	Collection string
	ID         string
	// Version increases by one on every committed write. It is 0 only for
	// documents that were never written.
	Version int64
	Fields  Fields
}
