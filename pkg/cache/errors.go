package cache

import (
	"context"
	"errors"
	"net"
	"time"
)

// ErrUnreachable is returned when a remote cache backend cannot be reached
// after retrying.
var ErrUnreachable = errors.New("cache backend unreachable")

// backoff retries transient backend failures with a doubling delay.
type backoff struct {
	attempts int
	delay    time.Duration
}

// connectBackoff covers a Redis server that is still starting up.
var connectBackoff = backoff{attempts: 3, delay: 200 * time.Millisecond}

// transient reports whether err is a network failure worth retrying.
func transient(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// do runs fn until it succeeds, fails with a non-transient error, or the
// attempts run out. A final transient failure is wrapped in ErrUnreachable.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.delay
	var err error
	for i := 0; i < b.attempts; i++ {
		if err = fn(); err == nil || !transient(err) {
			return err
		}
		if i == b.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return errors.Join(ErrUnreachable, err)
}
