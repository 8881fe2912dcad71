// Package docstore defines the document store contract used by thankschain.
//
// A store holds schemaless documents grouped in collections and offers:
//   - Point reads and writes (Get, Create, Set, Update, Delete)
//   - Field transforms applied atomically by the store (Increment,
//     ArrayUnion, ServerTimestamp)
//   - Pre-allocatable document ids (NewID)
//   - Filtered, sorted queries (Equals, NotEquals, In, ArrayContains)
//   - Optimistic multi-document transactions (RunTransaction)
//
// # Transactions
//
// A transaction function performs all of its reads before any write. Every
// document read inside the transaction is version-checked at commit; if a
// concurrent commit changed it, the store aborts and returns ErrConflict.
// Writes are buffered and applied all-or-nothing. Retrier wraps
// RunTransaction with a bounded retry loop and surfaces ErrUnavailable after
// the last attempt.
//
// # Values
//
// Field values are restricted to string, int64, bool, nil, []any and
// map[string]any. Floats are rejected. Timestamps are stored as int64 Unix
// microseconds; use Fields.Time to read them back.
package docstore
