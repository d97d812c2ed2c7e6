package movies

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelviewapp/reelview-server/internal/config"
	"github.com/reelviewapp/reelview-server/internal/metricstore"
	"github.com/reelviewapp/reelview-server/internal/query"
	"github.com/reelviewapp/reelview-server/internal/tmdb"
)

// recordedMetrics captures create calls against the fake metrics backend.
type recordedMetrics struct {
	mu      sync.Mutex
	creates []map[string]any
}

func (m *recordedMetrics) add(data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, data)
}

func (m *recordedMetrics) all() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, len(m.creates))
	copy(out, m.creates)
	return out
}

func newFakeMetricsBackend(t *testing.T) (*metricstore.Client, *recordedMetrics) {
	t.Helper()
	recorded := &recordedMetrics{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"total": 0, "documents": []}`))
		case http.MethodPost:
			var payload struct {
				Data map[string]any `json:"data"`
			}
			require.NoError(t, json.UnmarshalRead(r.Body, &payload))
			recorded.add(payload.Data)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"$id": "doc"}`))
		}
	}))
	t.Cleanup(server.Close)

	client := metricstore.NewClient(config.MetricsConfig{
		Endpoint:     server.URL + "/v1",
		ProjectID:    "reelview",
		DatabaseID:   "main",
		CollectionID: "metrics",
	}, slog.New(slog.DiscardHandler))
	return client, recorded
}

func searchEnvelope(term string, page, totalPages int) string {
	return fmt.Sprintf(`{
		"page": %d,
		"results": [
			{"id": 277834, "title": %q, "overview": "", "poster_path": "/m.jpg",
			 "backdrop_path": null, "release_date": "2016-11-23", "popularity": 88.6,
			 "vote_average": 7.5, "vote_count": 11645, "genre_ids": [16],
			 "adult": false, "original_language": "en"}
		],
		"total_pages": %d,
		"total_results": 92
	}`, page, term, totalPages)
}

func newTestService(t *testing.T, tmdbHandler http.HandlerFunc) (*Service, *recordedMetrics) {
	t.Helper()
	upstream := httptest.NewServer(tmdbHandler)
	t.Cleanup(upstream.Close)

	log := slog.New(slog.DiscardHandler)
	client := tmdb.NewClient(config.TMDBConfig{
		APIKey:       "test-key",
		BaseURL:      upstream.URL,
		ImageBaseURL: "https://image.example.com/t/p",
		Language:     "en-US",
	}, log)

	metrics, recorded := newFakeMetricsBackend(t)

	service := NewService(client, query.NewCache(log), metrics, log)
	service.recorder.interval = 20 * time.Millisecond
	t.Cleanup(service.Close)
	return service, recorded
}

func TestSearch_EmptyTermIsDisabled(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("disabled query must not reach upstream")
	})

	result := service.Search(context.Background(), "client1", "", 1)
	assert.True(t, result.Disabled)
	assert.False(t, result.HasValue)
	assert.NoError(t, result.Err)
}

func TestSearch_CachesPerTermAndPage(t *testing.T) {
	var calls atomic.Int32
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Write([]byte(searchEnvelope(r.URL.Query().Get("query"), page, 5)))
	})

	ctx := context.Background()
	first := service.Search(ctx, "client1", "Moana", 1)
	require.NoError(t, first.Err)
	second := service.Search(ctx, "client1", "Moana", 1)
	require.NoError(t, second.Err)
	assert.Equal(t, int32(1), calls.Load())

	service.Search(ctx, "client1", "Moana", 2)
	assert.Equal(t, int32(2), calls.Load())
	service.Search(ctx, "client1", "Dune", 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchFeed_AdvancesAndExhausts(t *testing.T) {
	var calls atomic.Int32
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Write([]byte(searchEnvelope("Moana", page, 5)))
	})

	ctx := context.Background()

	pages, hasNext, err := service.SearchFeed(ctx, "client1", "Moana")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Page)
	assert.True(t, hasNext, "page 1 of 5 implies a next-page cursor of 2")

	for range 4 {
		pages, hasNext, err = service.SearchFeed(ctx, "client1", "Moana")
		require.NoError(t, err)
	}
	assert.Len(t, pages, 5)
	assert.False(t, hasNext)
	assert.Equal(t, int32(5), calls.Load())

	// Exhausted: further calls are no-ops.
	pages, hasNext, err = service.SearchFeed(ctx, "client1", "Moana")
	require.NoError(t, err)
	assert.Len(t, pages, 5)
	assert.False(t, hasNext)
	assert.Equal(t, int32(5), calls.Load())
}

func TestSearchFeed_EmptyTerm(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty term must not reach upstream")
	})

	pages, hasNext, err := service.SearchFeed(context.Background(), "client1", "")
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.False(t, hasNext)
}

func TestGenreNames(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/genre/movie/list", r.URL.Path)
		w.Write([]byte(`{"genres": [
			{"id": 16, "name": "Animation"},
			{"id": 10751, "name": "Family"}
		]}`))
	})

	names := service.GenreNames(context.Background(), []int{16, 99999, 10751})
	assert.Equal(t, []string{"Animation", "Family"}, names)
}

func TestPopularAndLatest_UseSeparateKeys(t *testing.T) {
	var popular, latest atomic.Int32
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/popular":
			popular.Add(1)
		case "/discover/movie":
			latest.Add(1)
		}
		w.Write([]byte(searchEnvelope("x", 1, 1)))
	})

	ctx := context.Background()
	require.NoError(t, service.Popular(ctx, 1).Err)
	require.NoError(t, service.Latest(ctx, 1).Err)
	require.NoError(t, service.Popular(ctx, 1).Err)
	require.NoError(t, service.Latest(ctx, 1).Err)

	assert.Equal(t, int32(1), popular.Load())
	assert.Equal(t, int32(1), latest.Load())
}

func TestMostSearched_CachedWithinWindow(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("most-searched must not reach the movie upstream")
	})

	ctx := context.Background()
	first := service.MostSearched(ctx, 10)
	second := service.MostSearched(ctx, 10)
	assert.NotNil(t, first)
	assert.NotNil(t, second)
}

func TestSearch_DebouncedMetricRecording(t *testing.T) {
	service, recorded := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Write([]byte(searchEnvelope(r.URL.Query().Get("query"), page, 1)))
	})

	ctx := context.Background()
	// Rapid keystrokes: only the settled term may record a metric.
	service.Search(ctx, "client1", "m", 1)
	service.Search(ctx, "client1", "mo", 1)
	service.Search(ctx, "client1", "moana", 1)

	require.Eventually(t, func() bool {
		return len(recorded.all()) == 1
	}, time.Second, 10*time.Millisecond)

	// No further recordings after settling.
	time.Sleep(100 * time.Millisecond)
	creates := recorded.all()
	require.Len(t, creates, 1)
	assert.Equal(t, "moana", creates[0]["search_term"])
	assert.Equal(t, float64(277834), creates[0]["movie_id"])
	assert.Equal(t, float64(1), creates[0]["search_word_count"])
	assert.Equal(t, "https://image.example.com/t/p/w500/m.jpg", creates[0]["cover_img_url"])
}

func TestRecordSearch_SeparateClientsDoNotCoalesce(t *testing.T) {
	service, recorded := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	service.RecordSearch("client1", "dune", 438631, "Dune", "cover1")
	service.RecordSearch("client2", "moana", 277834, "Moana", "cover2")

	require.Eventually(t, func() bool {
		return len(recorded.all()) == 2
	}, time.Second, 10*time.Millisecond)
}
