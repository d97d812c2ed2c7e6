package query

import (
	"context"
	"sync"
)

// NextCursorFunc derives the next integer cursor from a fetched page, or
// reports that no further page exists.
type NextCursorFunc[T any] func(page T) (next int, ok bool)

// PageFetchFunc loads one page by its integer cursor.
type PageFetchFunc[T any] func(ctx context.Context, cursor int) (T, error)

// Infinite is a paginated query accumulating pages under one key. Cursors
// start at 1 and advance per the fetched page's metadata. Once the cursor
// is exhausted, further GetNextPage calls are permanent no-ops for this
// query; a new query (new underlying parameters) starts fresh.
type Infinite[T any] struct {
	fetch PageFetchFunc[T]
	next  NextCursorFunc[T]

	mu        sync.Mutex
	inflight  bool
	pages     []T
	cursor    int
	exhausted bool
	err       error
}

// NewInfinite creates an infinite query positioned before page 1.
func NewInfinite[T any](fetch PageFetchFunc[T], next NextCursorFunc[T]) *Infinite[T] {
	return &Infinite[T]{
		fetch:  fetch,
		next:   next,
		cursor: 1,
	}
}

// Pages returns the pages fetched so far, in fetch order.
func (q *Infinite[T]) Pages() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]T, len(q.pages))
	copy(out, q.pages)
	return out
}

// HasNextPage reports whether a further page is fetchable.
func (q *Infinite[T]) HasNextPage() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.exhausted
}

// Err returns the error from the most recent page fetch, if any.
func (q *Infinite[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// GetNextPage fetches the page at the current cursor and appends it.
// A no-op when the query is exhausted or a fetch is already in flight.
// A failed fetch leaves previously fetched pages intact and keeps the
// cursor in place, so the failing page is retryable.
func (q *Infinite[T]) GetNextPage(ctx context.Context) error {
	q.mu.Lock()
	if q.exhausted || q.inflight {
		q.mu.Unlock()
		return nil
	}
	q.inflight = true
	cursor := q.cursor
	q.mu.Unlock()

	page, err := q.fetch(ctx, cursor)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.inflight = false
	if err != nil {
		q.err = err
		return err
	}

	q.err = nil
	q.pages = append(q.pages, page)
	if next, ok := q.next(page); ok {
		q.cursor = next
	} else {
		q.exhausted = true
	}
	return nil
}

// NextCursor returns the cursor of the next page to fetch and whether one
// exists.
func (q *Infinite[T]) NextCursor() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.exhausted {
		return 0, false
	}
	return q.cursor, true
}
