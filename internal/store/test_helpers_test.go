package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/thankschain/internal/ids"
)

// fixedClock returns the same instant every time.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithClock(fixedClock{testNow}),
		WithIDGenerator(ids.NewSequentialGenerator("doc")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
