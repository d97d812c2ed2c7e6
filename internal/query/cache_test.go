package query

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() *Cache {
	return NewCache(slog.New(slog.DiscardHandler))
}

func TestGet_FreshHitSkipsFetch(t *testing.T) {
	c := newTestCache()
	key := NewKey("movies", "popular", "page=1")
	policy := Policy{Staleness: StalenessPopular}

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "page-one", nil
	}

	first := Get(context.Background(), c, key, policy, fetch)
	require.NoError(t, first.Err)
	assert.Equal(t, "page-one", first.Value)

	second := Get(context.Background(), c, key, policy, fetch)
	require.NoError(t, second.Err)
	assert.Equal(t, "page-one", second.Value)
	assert.False(t, second.Stale)

	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_ConcurrentIdenticalQueriesShareOneFetch(t *testing.T) {
	c := newTestCache()
	key := NewKey("movies", "search", "moana", "page=1")
	policy := Policy{Staleness: StalenessSearch}

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "results", nil
	}

	const workers = 10
	var started, done sync.WaitGroup
	started.Add(workers)
	done.Add(workers)
	for range workers {
		go func() {
			started.Done()
			r := Get(context.Background(), c, key, policy, fetch)
			assert.Equal(t, "results", r.Value)
			done.Done()
		}()
	}

	started.Wait()
	time.Sleep(10 * time.Millisecond) // let every worker reach the fetch path
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent identical queries must collapse into one request")
}

func TestGet_StaleEntryRefreshesInForeground(t *testing.T) {
	c := newTestCache()
	key := NewKey("movies", "popular", "page=1")
	policy := Policy{Staleness: StalenessPopular}

	now := time.Now()
	c.now = func() time.Time { return now }

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "old", nil
		}
		return "new", nil
	}

	Get(context.Background(), c, key, policy, fetch)
	now = now.Add(StalenessPopular + time.Second)

	r := Get(context.Background(), c, key, policy, fetch)
	require.NoError(t, r.Err)
	assert.Equal(t, "new", r.Value)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_FetchFailureKeepsCachedData(t *testing.T) {
	c := newTestCache()
	key := NewKey("movies", "latest", "page=1")
	policy := Policy{Staleness: StalenessLatest}

	now := time.Now()
	c.now = func() time.Time { return now }

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "good", nil
		}
		return "", assert.AnError
	}

	first := Get(context.Background(), c, key, policy, fetch)
	require.NoError(t, first.Err)

	now = now.Add(StalenessLatest + time.Second)

	second := Get(context.Background(), c, key, policy, fetch)
	assert.Error(t, second.Err)
	assert.True(t, second.HasValue, "error must not clear cached data")
	assert.Equal(t, "good", second.Value)
}

func TestGet_BackgroundRefreshServesStaleImmediately(t *testing.T) {
	c := newTestCache()
	key := NewKey("genres")
	policy := Policy{Staleness: StalenessGenres, BackgroundRefresh: true}

	now := time.Now()
	var mu sync.Mutex
	c.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "old", nil
		}
		return "new", nil
	}

	Get(context.Background(), c, key, policy, fetch)

	mu.Lock()
	now = now.Add(StalenessGenres + time.Minute)
	mu.Unlock()

	r := Get(context.Background(), c, key, policy, fetch)
	assert.Equal(t, "old", r.Value, "stale value is served while the refresh runs")
	assert.True(t, r.Stale)

	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		refreshed := Get(context.Background(), c, key, policy, fetch)
		return refreshed.Value == "new"
	}, time.Second, 5*time.Millisecond)
}

func TestDisabled(t *testing.T) {
	r := Disabled[string]()
	assert.True(t, r.Disabled)
	assert.False(t, r.HasValue)
	assert.NoError(t, r.Err)
}

func TestInvalidate(t *testing.T) {
	c := newTestCache()
	key := NewKey("movies", "detail", "438631")
	policy := Policy{Staleness: StalenessDetail}

	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 438631, nil
	}

	Get(context.Background(), c, key, policy, fetch)
	c.Invalidate(key)
	Get(context.Background(), c, key, policy, fetch)

	assert.Equal(t, int32(2), calls.Load())
}
