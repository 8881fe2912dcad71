package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/thankschain/internal/docstore"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get retrieves a single document.
// Returns an error wrapping docstore.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	doc, found, err := readDocument(ctx, s.db, collection, id)
	if err != nil {
		return docstore.Document{}, err
	}
	if !found {
		return docstore.Document{}, docstore.NotFound(collection, id)
	}
	return doc, nil
}

// Query returns the documents matching q.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.Validate(q); err != nil {
		return nil, err
	}

	sqlText, params, err := compileQuery(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docstore.ErrInvalidQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, classify("query "+q.Collection, err)
	}
	defer rows.Close()

	docs := []docstore.Document{}
	for rows.Next() {
		doc := docstore.Document{Collection: q.Collection}
		var data string
		if err := rows.Scan(&doc.ID, &doc.Version, &data); err != nil {
			return nil, classify("scan "+q.Collection, err)
		}
		if doc.Fields, err = unmarshalFields(data); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", q.Collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("iterate "+q.Collection, err)
	}

	return docs, nil
}

// readDocument loads one row. found is false when the row does not exist.
func readDocument(ctx context.Context, q queryer, collection, id string) (docstore.Document, bool, error) {
	doc := docstore.Document{Collection: collection, ID: id}
	var data string

	err := q.QueryRowContext(ctx, `
		SELECT version, data FROM documents
		WHERE collection = ? AND id = ?
	`, collection, id).Scan(&doc.Version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, false, nil
	}
	if err != nil {
		return docstore.Document{}, false, classify("get "+collection+"/"+id, err)
	}

	if doc.Fields, err = unmarshalFields(data); err != nil {
		return docstore.Document{}, false, fmt.Errorf("%s/%s: %w", collection, id, err)
	}
	return doc, true, nil
}
