package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff retries an operation with exponentially growing waits.
type Backoff struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// Delay is the first wait; it doubles after every failed attempt.
	Delay time.Duration
}

// connectBackoff governs the initial redis PING.
var connectBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, returns an error for which transient
// reports false, or the attempts run out. The last error is returned.
// Waiting stops early with ctx.Err() when ctx is done.
func (b Backoff) Do(ctx context.Context, transient func(error) bool, fn func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !transient(err) || attempt >= b.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
