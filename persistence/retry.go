package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// ErrBatchUnsupported is returned by Apply when the wrapped backend cannot
// run atomic batches.
var ErrBatchUnsupported = errors.New("backend does not support batches")

type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxRetries:      3,
	}
}

// RetryBackend retries failed operations with exponential backoff and
// reports exhausted operations as *Error.
type RetryBackend struct {
	next   Backend
	policy RetryPolicy
}

func WithRetry(next Backend, policy RetryPolicy) *RetryBackend {
	return &RetryBackend{next: next, policy: policy}
}

func (r *RetryBackend) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	var docs []Document
	err := r.retry(ctx, "read", collection, "", func() error {
		var err error
		docs, err = r.next.ReadAll(ctx, collection)
		return err
	})
	return docs, err
}

func (r *RetryBackend) Write(ctx context.Context, collection, id string, data []byte) error {
	return r.retry(ctx, "write", collection, id, func() error {
		return r.next.Write(ctx, collection, id, data)
	})
}

func (r *RetryBackend) Delete(ctx context.Context, collection, id string) error {
	return r.retry(ctx, "delete", collection, id, func() error {
		return r.next.Delete(ctx, collection, id)
	})
}

func (r *RetryBackend) Apply(ctx context.Context, ops []Op) error {
	batcher, ok := r.next.(Batcher)
	if !ok {
		return ErrBatchUnsupported
	}
	return r.retry(ctx, "batch", "", "", func() error {
		err := batcher.Apply(ctx, ops)
		if errors.Is(err, ErrBatchUnsupported) {
			return backoff.Permanent(err)
		}
		return err
	})
}

func (r *RetryBackend) retry(ctx context.Context, op, collection, id string, fn func() error) error {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		log.Warn().Err(err).
			Str("op", op).
			Str("collection", collection).
			Str("id", id).
			Int("attempt", attempt).
			Msg("storage operation failed")
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.policy.MaxRetries), ctx))
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBatchUnsupported) {
		return err
	}
	return &Error{Op: op, Collection: collection, ID: id, Err: err}
}

func (r *RetryBackend) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
