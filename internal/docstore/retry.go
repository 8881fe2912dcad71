package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// Observer receives transaction retry events, typically for metrics.
type Observer interface {
	ObserveAttempt(op string)
	ObserveConflict(op string)
	ObserveExhausted(op string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) ObserveAttempt(string)   {}
func (NopObserver) ObserveConflict(string)  {}
func (NopObserver) ObserveExhausted(string) {}

// DefaultMaxAttempts is used when Retrier.MaxAttempts is not set.
const DefaultMaxAttempts = 5

// Retrier reruns conflicting transactions from the start.
//
// Only ErrConflict is retried. Any other error, including errors returned by
// the transaction function itself, is returned immediately. After
// MaxAttempts conflicts the error wraps ErrUnavailable.
type Retrier struct {
	MaxAttempts int
	// Backoff is the base delay; attempt n waits up to n*Backoff (jittered).
	Backoff  time.Duration
	Observer Observer
	Logger   *slog.Logger
}

// Run executes fn in a transaction on s, retrying on conflict.
func (r Retrier) Run(ctx context.Context, s Store, op string, fn TxFunc) error {
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	obs := r.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for attempt := 1; ; attempt++ {
		obs.ObserveAttempt(op)
		err := s.RunTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
		obs.ObserveConflict(op)

		if attempt >= maxAttempts {
			obs.ObserveExhausted(op)
			logger.Warn("transaction retries exhausted", "op", op, "attempts", attempt)
			return fmt.Errorf("%s: %w (%d attempts, last error: %v)", op, ErrUnavailable, attempt, err)
		}
		logger.Debug("transaction conflict, retrying", "op", op, "attempt", attempt)

		if err := r.wait(ctx, attempt); err != nil {
			return err
		}
	}
}

func (r Retrier) wait(ctx context.Context, attempt int) error {
	if r.Backoff <= 0 {
		return ctx.Err()
	}
	limit := int64(r.Backoff) * int64(attempt)
	delay := time.Duration(limit/2 + rand.Int63n(limit/2+1))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
