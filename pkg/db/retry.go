package db

import (
	"context"
)

// RetryTransient runs fn and replays it up to retries more times while it
// fails with a transient datastore conflict. onRetry, when set, observes every
// replayed failure.
func RetryTransient(ctx context.Context, retries int, onRetry func(attempt int, err error), fn func() error) error {
	if retries < 0 {
		retries = 0
	}
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = fn()
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt == retries {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return err
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}
	}
	return err
}
