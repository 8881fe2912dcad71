package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/thankschain/internal/docstore"
)

type docKey struct {
	collection string
	id         string
}

func (k docKey) String() string {
	return k.collection + "/" + k.id
}

type writeKind int

const (
	writeCreate writeKind = iota
	writeSet
	writeUpdate
	writeDelete
)

type pendingWrite struct {
	kind    writeKind
	key     docKey
	fields  docstore.Fields
	updates []docstore.Update
}

// txn buffers one transaction attempt.
// reads maps each document read to the version observed (0 = absent).
type txn struct {
	store  *Store
	reads  map[docKey]int64
	writes []pendingWrite
}

var _ docstore.Tx = (*txn)(nil)

func (t *txn) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if len(t.writes) > 0 {
		return docstore.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, docstore.ErrReadAfterWrite)
	}

	key := docKey{collection, id}
	doc, found, err := readDocument(ctx, t.store.db, collection, id)
	if err != nil {
		return docstore.Document{}, err
	}

	var version int64
	if found {
		version = doc.Version
	}
	if prev, seen := t.reads[key]; seen && prev != version {
		return docstore.Document{}, fmt.Errorf("get %s: %w: changed during transaction", key, docstore.ErrConflict)
	}
	t.reads[key] = version

	if !found {
		return docstore.Document{}, docstore.NotFound(collection, id)
	}
	return doc, nil
}

func (t *txn) Create(collection, id string, fields docstore.Fields) error {
	return t.buffer(pendingWrite{kind: writeCreate, key: docKey{collection, id}, fields: fields})
}

func (t *txn) Set(collection, id string, fields docstore.Fields) error {
	return t.buffer(pendingWrite{kind: writeSet, key: docKey{collection, id}, fields: fields})
}

func (t *txn) Update(collection, id string, updates ...docstore.Update) error {
	for _, u := range updates {
		if len(u.Path) == 0 {
			return fmt.Errorf("update %s/%s: %w: empty field path", collection, id, docstore.ErrInvalidValue)
		}
	}
	return t.buffer(pendingWrite{kind: writeUpdate, key: docKey{collection, id}, updates: updates})
}

func (t *txn) Delete(collection, id string) error {
	return t.buffer(pendingWrite{kind: writeDelete, key: docKey{collection, id}})
}

func (t *txn) buffer(w pendingWrite) error {
	if w.key.collection == "" || w.key.id == "" {
		return fmt.Errorf("write %s: %w: collection and id are required", w.key, docstore.ErrInvalidValue)
	}
	t.writes = append(t.writes, w)
	return nil
}

// RunTransaction runs fn once and commits its buffered writes atomically.
func (s *Store) RunTransaction(ctx context.Context, fn docstore.TxFunc) error {
	t := &txn{store: s, reads: make(map[docKey]int64)}
	if err := fn(ctx, t); err != nil {
		return err
	}
	return s.commit(ctx, t)
}

// docState is the working copy of one written document during commit.
type docState struct {
	existed bool
	exists  bool
	version int64
	fields  map[string]any
}

// commit applies t inside one BEGIN IMMEDIATE transaction.
// Every recorded read version is checked before any write is applied.
func (s *Store) commit(ctx context.Context, t *txn) (err error) {
	if len(t.writes) == 0 {
		return nil
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin", err)
	}
	defer func() {
		if err != nil {
			sqlTx.Rollback()
		}
	}()

	for key, seen := range t.reads {
		current, _, err := readVersion(ctx, sqlTx, key)
		if err != nil {
			return err
		}
		if current != seen {
			s.logger.Debug("version mismatch", "doc", key.String(), "read", seen, "current", current)
			return fmt.Errorf("commit %s: %w: read version %d, current %d",
				key, docstore.ErrConflict, seen, current)
		}
	}

	now := docstore.Timestamp(s.clock.Now())
	states := make(map[docKey]*docState)
	var order []docKey

	for _, w := range t.writes {
		st, ok := states[w.key]
		if !ok {
			st, err = loadState(ctx, sqlTx, w.key)
			if err != nil {
				return err
			}
			states[w.key] = st
			order = append(order, w.key)
		}
		if err := applyWrite(st, w, now); err != nil {
			return err
		}
	}

	for _, key := range order {
		if err := flush(ctx, sqlTx, key, states[key]); err != nil {
			return err
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return classify("commit", err)
	}
	return nil
}

func readVersion(ctx context.Context, q queryer, key docKey) (int64, bool, error) {
	var version int64
	err := q.QueryRowContext(ctx,
		"SELECT version FROM documents WHERE collection = ? AND id = ?",
		key.collection, key.id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, classify("version "+key.String(), err)
	}
	return version, true, nil
}

func loadState(ctx context.Context, q queryer, key docKey) (*docState, error) {
	doc, found, err := readDocument(ctx, q, key.collection, key.id)
	if err != nil {
		return nil, err
	}
	if !found {
		return &docState{}, nil
	}
	return &docState{
		existed: true,
		exists:  true,
		version: doc.Version,
		fields:  map[string]any(doc.Fields),
	}, nil
}

func applyWrite(st *docState, w pendingWrite, now int64) error {
	switch w.kind {
	case writeCreate:
		if st.exists {
			return fmt.Errorf("create %s: %w", w.key, docstore.ErrAlreadyExists)
		}
		return replaceFields(st, w, now)
	case writeSet:
		return replaceFields(st, w, now)
	case writeUpdate:
		if !st.exists {
			return fmt.Errorf("update: %w", docstore.NotFound(w.key.collection, w.key.id))
		}
		if err := applyUpdates(st.fields, w.updates, now); err != nil {
			return fmt.Errorf("update %s: %w", w.key, err)
		}
		return nil
	case writeDelete:
		st.exists = false
		st.fields = nil
		return nil
	default:
		return fmt.Errorf("unknown write kind %d", w.kind)
	}
}

func replaceFields(st *docState, w pendingWrite, now int64) error {
	resolved, err := normalize(w.fields, now)
	if err != nil {
		return fmt.Errorf("write %s: %w", w.key, err)
	}
	fields, _ := resolved.(map[string]any)
	if fields == nil {
		fields = map[string]any{}
	}
	st.exists = true
	st.fields = fields
	return nil
}

// applyUpdates resolves each update against fields in order.
// Intermediate path segments that are missing or not maps become maps.
func applyUpdates(fields map[string]any, updates []docstore.Update, now int64) error {
	for _, u := range updates {
		parent := fields
		for _, seg := range u.Path[:len(u.Path)-1] {
			next, ok := parent[seg].(map[string]any)
			if !ok {
				next = map[string]any{}
				parent[seg] = next
			}
			parent = next
		}
		leaf := u.Path[len(u.Path)-1]

		switch val := u.Value.(type) {
		case docstore.Increment:
			current, _ := parent[leaf].(int64)
			parent[leaf] = current + val.By
		case docstore.ArrayUnion:
			added, err := normalize(val.Values, now)
			if err != nil {
				return fmt.Errorf("%s: %w", u.Path, err)
			}
			current, _ := parent[leaf].([]any)
			merged := append([]any{}, current...)
			for _, v := range added.([]any) {
				if !containsValue(merged, v) {
					merged = append(merged, v)
				}
			}
			parent[leaf] = merged
		default:
			resolved, err := normalize(val, now)
			if err != nil {
				return fmt.Errorf("%s: %w", u.Path, err)
			}
			parent[leaf] = resolved
		}
	}
	return nil
}

// flush writes the final state of one document.
func flush(ctx context.Context, tx *sql.Tx, key docKey, st *docState) error {
	switch {
	case st.exists:
		data, err := marshalFields(docstore.Fields(st.fields))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (collection, id, version, data)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (collection, id) DO UPDATE SET
				version = excluded.version,
				data = excluded.data
		`, key.collection, key.id, st.version+1, data)
		if err != nil {
			return classify("write "+key.String(), err)
		}
	case st.existed:
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE collection = ? AND id = ?",
			key.collection, key.id); err != nil {
			return classify("delete "+key.String(), err)
		}
	}
	return nil
}

// Create writes a new document outside any caller transaction.
func (s *Store) Create(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return s.RunTransaction(ctx, func(_ context.Context, tx docstore.Tx) error {
		return tx.Create(collection, id, fields)
	})
}

// Set writes a document, replacing any previous content.
func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return s.RunTransaction(ctx, func(_ context.Context, tx docstore.Tx) error {
		return tx.Set(collection, id, fields)
	})
}

// Update applies updates to an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, updates ...docstore.Update) error {
	return s.RunTransaction(ctx, func(_ context.Context, tx docstore.Tx) error {
		return tx.Update(collection, id, updates...)
	})
}

// Delete removes a document. Absent documents are ignored.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.RunTransaction(ctx, func(_ context.Context, tx docstore.Tx) error {
		return tx.Delete(collection, id)
	})
}
