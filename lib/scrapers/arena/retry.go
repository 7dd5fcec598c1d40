package arena

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mazen160/go-random"
)

// Executor retries transient failures with exponential backoff and
// jitter. Auth and parse failures pass through untouched, retrying them
// would just burn quota against a session that is already dead.
type Executor struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func NewExecutor(maxRetries int, baseDelay time.Duration) Executor {
	return Executor{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   baseDelay * 16,
	}
}

// Do runs op, retrying transient failures up to MaxRetries times. It
// reports how many retries were spent alongside the final error.
func (e Executor) Do(ctx context.Context, op func(ctx context.Context) error) (retries int, err error) {
	for {
		err = op(ctx)
		if err == nil {
			return retries, nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) {
			return retries, err
		}
		if retries >= e.MaxRetries {
			return retries, err
		}

		delay := e.backoff(retries)
		slog.WarnContext(
			ctx, "transient failure, backing off",
			"attempt", retries+1,
			"max", e.MaxRetries,
			"delay", delay,
			"err", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return retries, ctx.Err()
		}
		retries++
	}
}

func (e Executor) backoff(retries int) time.Duration {
	delay := e.BaseDelay << retries
	if e.MaxDelay > 0 && delay > e.MaxDelay {
		delay = e.MaxDelay
	}
	jitterCap := int(delay.Milliseconds() / 4)
	if jitterCap > 0 {
		jitter, err := random.IntRange(0, jitterCap)
		if err == nil {
			delay += time.Duration(jitter) * time.Millisecond
		}
	}
	return delay
}
