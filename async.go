package fluent

import (
	"context"
	"net/http"
)

// Callback receives the outcome of an asynchronous dispatch. Exactly one
// of response and err is non-nil, the callback runs on a goroutine owned
// by the dispatch (never the calling one), and it is invoked exactly
// once.
type Callback[T any] func(resp *Response[T], err error)

// ExecuteAsync sends the request on a new goroutine and delivers the
// decoded outcome to callback. When Config.MaxInFlightAsync is set, the
// goroutine waits for an in-flight slot in the Config's budget before
// touching the network; a context cancelled during that wait is
// delivered as an *IOError.
func (b *Builder[T]) ExecuteAsync(ctx context.Context, method string, callback Callback[T]) {
	limiter := b.cfg.asyncLimiter
	go func() {
		if limiter != nil {
			if err := limiter.Acquire(ctx, 1); err != nil {
				callback(nil, &IOError{Err: err})
				return
			}
			defer limiter.Release(1)
		}
		callback(b.Execute(ctx, method))
	}()
}

// GetAsync sends a GET request asynchronously.
func (b *Builder[T]) GetAsync(ctx context.Context, callback Callback[T]) {
	b.ExecuteAsync(ctx, http.MethodGet, callback)
}

// HeadAsync sends a HEAD request asynchronously.
func (b *Builder[T]) HeadAsync(ctx context.Context, callback Callback[T]) {
	b.ExecuteAsync(ctx, http.MethodHead, callback)
}

// PostAsync sends a POST request asynchronously.
func (b *Builder[T]) PostAsync(ctx context.Context, callback Callback[T]) {
	b.ExecuteAsync(ctx, http.MethodPost, callback)
}

// PutAsync sends a PUT request asynchronously.
func (b *Builder[T]) PutAsync(ctx context.Context, callback Callback[T]) {
	b.ExecuteAsync(ctx, http.MethodPut, callback)
}

// PatchAsync sends a PATCH request asynchronously.
func (b *Builder[T]) PatchAsync(ctx context.Context, callback Callback[T]) {
	b.ExecuteAsync(ctx, http.MethodPatch, callback)
}

// DeleteAsync sends a DELETE request asynchronously.
func (b *Builder[T]) DeleteAsync(ctx context.Context, callback Callback[T]) {
	b.ExecuteAsync(ctx, http.MethodDelete, callback)
}

// OptionsAsync sends an OPTIONS request asynchronously.
func (b *Builder[T]) OptionsAsync(ctx context.Context, callback Callback[T]) {
	b.ExecuteAsync(ctx, http.MethodOptions, callback)
}

// TraceAsync sends a TRACE request asynchronously.
func (b *Builder[T]) TraceAsync(ctx context.Context, callback Callback[T]) {
	b.ExecuteAsync(ctx, http.MethodTrace, callback)
}
