package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/thankschain/internal/ids"
	"github.com/roach88/thankschain/internal/store"
)

// Env is an isolated SQLite store with deterministic time and ids.
type Env struct {
	Store *store.Store
	Clock *DeterministicClock
	IDs   *ids.SequentialGenerator
	Path  string
}

// OpenStore opens a fresh store under t.TempDir and closes it on cleanup.
// Ids are "id-0001", "id-0002", ... and every commit advances the clock by
// one second from Epoch.
func OpenStore(t testing.TB) *Env {
	t.Helper()
	env := &Env{
		Clock: NewDeterministicClock(),
		IDs:   ids.NewSequentialGenerator("id"),
		Path:  filepath.Join(t.TempDir(), "test.db"),
	}
	s, err := store.Open(env.Path,
		store.WithClock(env.Clock),
		store.WithIDGenerator(env.IDs),
		store.WithLogger(DiscardLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	env.Store = s
	return env
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
