package database

import (
	"context"
	"time"
)

// RetryFactory wraps a Factory with a fixed-interval retry budget on
// Open. Only ErrDatabaseUnavailable is retried; any other failure is
// returned immediately. The policy is deliberately dumb: a constant
// sleep, a constant number of retries, no backoff.
type RetryFactory struct {
	inner       Factory
	maxAttempts uint
	sleep       time.Duration
	logger      Logger
}

// NewRetryFactory wraps inner so Open is retried up to maxAttempts times
// after the initial try, sleeping the given interval between tries.
// maxAttempts of zero means a single try.
func NewRetryFactory(inner Factory, maxAttempts uint, sleep time.Duration, logger Logger) *RetryFactory {
	return &RetryFactory{
		inner:       inner,
		maxAttempts: maxAttempts,
		sleep:       sleep,
		logger:      logger,
	}
}

// Open implements Factory.
func (f *RetryFactory) Open(ctx context.Context) (Connection, error) {
	var attempt uint
	for {
		conn, err := f.inner.Open(ctx)
		if err == nil {
			return conn, nil
		}
		if !IsUnavailable(err) || attempt >= f.maxAttempts {
			return nil, err
		}

		attempt++
		f.logger.Info("database unavailable, retrying connection", err, map[string]interface{}{
			"attempt":      attempt,
			"max_attempts": f.maxAttempts,
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.sleep):
		}
	}
}

// Dialect implements Factory.
func (f *RetryFactory) Dialect() Dialect {
	return f.inner.Dialect()
}
