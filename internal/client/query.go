package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Snapshot is the observable state of a query.
type Snapshot[T any] struct {
	Data         T
	HasData      bool
	IsLoading    bool
	IsValidating bool
	IsError      bool
	Error        error
}

// Query is the cached-fetch primitive behind every hook. Data from a previous
// successful fetch stays visible while a revalidation runs or after it fails.
type Query[T any] struct {
	client   *Client
	interval time.Duration

	mu         sync.Mutex
	key        string
	data       T
	hasData    bool
	validating bool
	err        error
}

func newQuery[T any](c *Client, key string, interval time.Duration) *Query[T] {
	q := &Query[T]{client: c, interval: interval}
	q.setKey(key)
	return q
}

// setKey points the query at a new URL and seeds it from the client cache.
func (q *Query[T]) setKey(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if key == q.key && q.hasData {
		return
	}
	var zero T
	q.key, q.data, q.hasData, q.err = key, zero, false, nil
	if raw, ok := q.client.cached(key); ok {
		var v T
		if json.Unmarshal(raw, &v) == nil {
			q.data, q.hasData = v, true
		}
	}
}

func (q *Query[T]) Key() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.key
}

func (q *Query[T]) Snapshot() Snapshot[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Snapshot[T]{
		Data:         q.data,
		HasData:      q.hasData,
		IsLoading:    q.validating && !q.hasData,
		IsValidating: q.validating,
		IsError:      q.err != nil,
		Error:        q.err,
	}
}

func (q *Query[T]) Revalidate(ctx context.Context) error {
	_, _, err := q.revalidate(ctx)
	return err
}

// revalidate fetches the current key. applied is false when the key changed
// while the request was in flight; the late result is then dropped.
func (q *Query[T]) revalidate(ctx context.Context) (T, bool, error) {
	q.mu.Lock()
	key := q.key
	q.validating = true
	q.mu.Unlock()

	var v T
	raw, err := q.client.load(ctx, key)
	if err == nil {
		if uerr := json.Unmarshal(raw, &v); uerr != nil {
			err = fmt.Errorf("decode %s: %w", key, uerr)
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.key != key {
		return v, false, err
	}
	q.validating = false
	if err != nil {
		q.err = err
		return v, true, err
	}
	q.data, q.hasData, q.err = v, true, nil
	return v, true, nil
}

// Run polls the query every interval until ctx is done. It returns at once
// when polling is disabled.
func (q *Query[T]) Run(ctx context.Context) {
	if q.interval <= 0 {
		return
	}
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = q.Revalidate(ctx)
		}
	}
}

// Resource is a read-only hook over one endpoint.
type Resource[T any] struct {
	client      *Client
	query       *Query[T]
	unsubscribe func()
}

func newResource[T any](ctx context.Context, c *Client, key string, interval time.Duration) *Resource[T] {
	r := &Resource[T]{client: c, query: newQuery[T](c, key, interval)}
	r.unsubscribe = c.subscribe(r.query.Revalidate)
	_ = r.query.Revalidate(ctx)
	return r
}

func (r *Resource[T]) State() Snapshot[T] { return r.query.Snapshot() }

func (r *Resource[T]) Refresh(ctx context.Context) error { return r.query.Revalidate(ctx) }

func (r *Resource[T]) Run(ctx context.Context) { r.query.Run(ctx) }

// Close detaches the hook from Focus and Reconnect revalidation.
func (r *Resource[T]) Close() { r.unsubscribe() }
