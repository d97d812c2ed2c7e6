package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Staleness windows per resource family. A cached value younger than its
// window is served without a fetch; an older one triggers a refresh per
// the caller's policy.
const (
	StalenessPopular = 5 * time.Minute
	StalenessLatest  = 10 * time.Minute
	StalenessGenres  = 24 * time.Hour
	StalenessDetail  = 15 * time.Minute
	StalenessSearch  = 5 * time.Minute
	StalenessRanking = 10 * time.Second
)

// Policy controls how one lookup treats a stale entry.
type Policy struct {
	// Staleness is the maximum age before a cached value needs a refresh.
	Staleness time.Duration
	// BackgroundRefresh serves the stale value immediately and refreshes
	// on a separate goroutine; otherwise the caller waits for the fetch.
	BackgroundRefresh bool
}

// FetchFunc loads the value for a key from its underlying source.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one cache lookup. A fetch failure does not clear
// previously cached data: HasValue stays true and Value holds the last good
// value alongside Err.
type Result[T any] struct {
	Value    T
	HasValue bool
	// Stale marks a value older than its window, served while a background
	// refresh runs.
	Stale bool
	// Disabled marks a query that performed no request by design.
	Disabled bool
	Err      error
}

// Cache is the shared entry map. Entries are mutated only on completion of
// fetches; concurrent identical fetches collapse into one in-flight call.
type Cache struct {
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[Key]*entry
	group   singleflight.Group

	// now is replaceable in tests.
	now func() time.Time
}

type entry struct {
	value     any
	fetchedAt time.Time
	hasValue  bool
	err       error
}

// NewCache creates an empty cache.
func NewCache(logger *slog.Logger) *Cache {
	return &Cache{
		logger:  logger,
		entries: make(map[Key]*entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key, fetching or refreshing it per the
// policy. Concurrent calls for the same key share one underlying fetch.
func Get[T any](ctx context.Context, c *Cache, key Key, policy Policy, fetch FetchFunc[T]) Result[T] {
	snapshot, ok := c.lookup(key)
	if ok && snapshot.hasValue {
		age := c.now().Sub(snapshot.fetchedAt)
		if age < policy.Staleness {
			return resultFrom[T](snapshot, false)
		}
		if policy.BackgroundRefresh {
			go c.refresh(context.WithoutCancel(ctx), key, adapt(fetch))
			return resultFrom[T](snapshot, true)
		}
	}

	refreshed := c.refresh(ctx, key, adapt(fetch))
	return resultFrom[T](refreshed, false)
}

// Disabled reports the neutral state of a query that is not active (for
// example an empty search term): no request, no value, no error.
func Disabled[T any]() Result[T] {
	return Result[T]{Disabled: true}
}

// Invalidate drops the entry for key, forcing the next lookup to fetch.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) lookup(key Key) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return entry{}, false
	}
	return *e, true
}

// refresh runs the fetch through singleflight and applies the completion to
// the entry: success replaces the value, failure keeps the previous value
// and records the error. Last write wins; issue order is not guaranteed.
func (c *Cache) refresh(ctx context.Context, key Key, fetch FetchFunc[any]) entry {
	value, err, _ := c.group.Do(string(key), func() (any, error) {
		return fetch(ctx)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	if err != nil {
		e.err = err
		c.logger.Warn("cache refresh failed", "key", key.String(), "error", err)
	} else {
		e.value = value
		e.fetchedAt = c.now()
		e.hasValue = true
		e.err = nil
	}
	return *e
}

func adapt[T any](fetch FetchFunc[T]) FetchFunc[any] {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

func resultFrom[T any](e entry, stale bool) Result[T] {
	r := Result[T]{
		HasValue: e.hasValue,
		Stale:    stale,
		Err:      e.err,
	}
	if e.hasValue {
		// The stored value was produced by a FetchFunc[T] for this key.
		r.Value = e.value.(T)
	}
	return r
}
