// Package store provides a SQLite-backed implementation of docstore.Store.
//
// Every document lives in one documents table row keyed by
// (collection, id), with its fields stored as canonical JSON text and a
// version counter bumped on every committed write.
//
// # Critical Patterns
//
// Optimistic transactions:
//   - Reads inside a transaction record the document version they observed
//   - Writes are buffered until commit
//   - Commit runs in one BEGIN IMMEDIATE transaction, re-checks every recorded
//     version and fails with docstore.ErrConflict on mismatch
//
// Atomic transforms:
//   - Increment, ArrayUnion and ServerTimestamp are applied against the row
//     as it exists inside the commit, so concurrent writers never lose updates
//   - All ServerTimestamp values in one commit resolve to the same instant
//
// Deterministic query results:
//   - Every query ends with ORDER BY rowid ASC, so documents that tie on the
//     requested keys come back in insertion order
//
// Canonical encoding:
//   - Object keys sorted, strings NFC normalized, no HTML escaping
//   - Invalid UTF-8 is replaced with U+FFFD; callers validate before writing
//   - Integers only; floats are rejected
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: Wait for another handle's lock, 5 seconds unless
//     WithBusyTimeout says otherwise
//   - _txlock=immediate: Commits take the write lock up front
//
// SQLITE_BUSY and SQLITE_LOCKED surface as docstore.ErrConflict so callers
// retry them like any other lost race. All other driver failures wrap
// docstore.ErrStoreUnavailable.
package store
