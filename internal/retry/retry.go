package retry

import (
	"context"
	"github.com/pkg/errors"
	"time"
)

var ErrTooManyAttempts = errors.New("too many retry attempts")

// Callable is invoked once per attempt, starting with attempt 1
type Callable func(attempt int) error

type retryableError struct {
	error
	attempt int
}

func (e *retryableError) Unwrap() error {
	return e.error
}

// Error marks err as recoverable, so the caller will be invoked again.
// Any other error returned from a Callable stops the retries at once.
func Error(err error, attempt int) error {
	if err == nil {
		return nil
	}
	return &retryableError{error: err, attempt: attempt}
}

type Attempts interface {
	Next() (time.Duration, bool)
	Current() int
}

func Start(ctx context.Context, a Attempts, cb Callable) error {
	for {
		err := cb(a.Current())
		if err == nil {
			return nil
		}

		var re *retryableError
		if !errors.As(err, &re) {
			return errors.Wrapf(err, "attempt %d failed", a.Current())
		}

		next, stop := a.Next()
		if stop {
			return errors.Wrapf(ErrTooManyAttempts, "last error: %s", re.error.Error())
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "gave up after attempt %d: %s", re.attempt, re.error.Error())
		case <-time.After(next):
		}
	}
}

// Incremental waits one more step after each failed attempt
func Incremental(ctx context.Context, step time.Duration, maxAttempts int, cb Callable) error {
	return Start(ctx, IncrementalAttempts(step, maxAttempts), cb)
}

type incrementalAttempts struct {
	prev time.Duration
	step time.Duration
	max  int
	curr int
}

func (a *incrementalAttempts) Next() (time.Duration, bool) {
	a.curr++
	if a.curr > a.max {
		return 0, true
	}

	next := a.prev + a.step
	a.prev = next

	return next, false
}

func (a *incrementalAttempts) Current() int {
	return a.curr
}

func IncrementalAttempts(step time.Duration, max int) Attempts {
	if max < 1 {
		max = 1
	}

	return &incrementalAttempts{
		step: step,
		max:  max,
		curr: 1,
	}
}
