package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/ids"
)

// openHandle opens another Store on path, as a second process would.
func openHandle(t *testing.T, path string, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{
		WithClock(fixedClock{testNow}),
		WithIDGenerator(ids.NewSequentialGenerator("doc")),
	}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunTransaction_ConcurrentIncrementsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	handles := []*Store{openHandle(t, path), openHandle(t, path)}
	ctx := context.Background()

	if err := handles[0].Create(ctx, "posts", "p1", docstore.Fields{"n": 0}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	retrier := docstore.Retrier{MaxAttempts: 100, Backoff: time.Millisecond}
	const perHandle = 6

	var wg sync.WaitGroup
	errs := make([]error, 2*perHandle)
	for i := range errs {
		s := handles[i%2]
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = retrier.Run(ctx, s, "increment", func(ctx context.Context, tx docstore.Tx) error {
				doc, err := tx.Get(ctx, "posts", "p1")
				if err != nil {
					return err
				}
				return tx.Update("posts", "p1", docstore.Value(docstore.P("n"), doc.Fields.Int("n")+1))
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: %v", i, err)
		}
	}

	for i, s := range handles {
		doc, err := s.Get(ctx, "posts", "p1")
		if err != nil {
			t.Fatalf("handle %d Get() failed: %v", i, err)
		}
		if got := doc.Fields.Int("n"); got != int64(len(errs)) {
			t.Errorf("handle %d: n = %d, want %d (lost update)", i, got, len(errs))
		}
		if doc.Version != int64(len(errs))+1 {
			t.Errorf("handle %d: Version = %d, want %d", i, doc.Version, len(errs)+1)
		}
	}
}

func TestCommit_BusyWriteLockIsConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	a := openHandle(t, path)
	b := openHandle(t, path, WithBusyTimeout(50*time.Millisecond))
	ctx := context.Background()

	if err := a.Create(ctx, "posts", "p1", docstore.Fields{"n": 0}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// _txlock=immediate: BEGIN takes the write lock.
	held, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() failed: %v", err)
	}

	err = b.Update(ctx, "posts", "p1", docstore.Inc(docstore.P("n"), 1))
	if !docstore.IsConflict(err) {
		held.Rollback()
		t.Fatalf("Update() under a held write lock = %v, want ErrConflict", err)
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(100 * time.Millisecond)
		held.Rollback()
		close(released)
	}()

	retrier := docstore.Retrier{MaxAttempts: 50, Backoff: 20 * time.Millisecond}
	err = retrier.Run(ctx, b, "increment", func(ctx context.Context, tx docstore.Tx) error {
		return tx.Update("posts", "p1", docstore.Inc(docstore.P("n"), 1))
	})
	<-released
	if err != nil {
		t.Fatalf("retried Update() failed: %v", err)
	}

	doc, err := a.Get(ctx, "posts", "p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got := doc.Fields.Int("n"); got != 1 {
		t.Errorf("n = %d, want 1 (the conflicted update must not apply)", got)
	}
}

func TestOpen_BusyTimeoutOption(t *testing.T) {
	s := openHandle(t, filepath.Join(t.TempDir(), "test.db"), WithBusyTimeout(250*time.Millisecond))

	var timeout int
	if err := s.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout query failed: %v", err)
	}
	if timeout != 250 {
		t.Errorf("busy_timeout = %d, want 250", timeout)
	}
}
