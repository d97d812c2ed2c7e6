// Package movies binds the TMDB resources to cache policies and the
// metrics client: the service layer behind the HTTP API.
package movies

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/reelviewapp/reelview-server/internal/metricstore"
	"github.com/reelviewapp/reelview-server/internal/query"
	"github.com/reelviewapp/reelview-server/internal/tmdb"
)

// Service serves movie browsing and search-metrics operations.
type Service struct {
	tmdb    *tmdb.Client
	cache   *query.Cache
	metrics *metricstore.Client
	logger  *slog.Logger

	feedsMu sync.Mutex
	feeds   map[query.Key]*query.Infinite[tmdb.PageEnvelope]

	recorder *debouncedRecorder
}

// NewService creates the movie service.
func NewService(client *tmdb.Client, cache *query.Cache, metrics *metricstore.Client, logger *slog.Logger) *Service {
	s := &Service{
		tmdb:    client,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		feeds:   make(map[query.Key]*query.Infinite[tmdb.PageEnvelope]),
	}
	s.recorder = newDebouncedRecorder(metrics, logger)
	return s
}

// Close flushes pending debounced metric recordings.
func (s *Service) Close() {
	s.recorder.Close()
}

// ImageURL resolves an image path from the catalog to a full URL at the
// given size token. Nil paths yield an empty URL.
func (s *Service) ImageURL(path *string, size string) string {
	return s.tmdb.ImageURL(path, size)
}

// Popular returns the popular-movies page through the cache (5 minute
// window).
func (s *Service) Popular(ctx context.Context, page int) query.Result[tmdb.PageEnvelope] {
	key := query.NewKey("movies", "popular").WithPage(page)
	return query.Get(ctx, s.cache, key, query.Policy{Staleness: query.StalenessPopular},
		func(ctx context.Context) (tmdb.PageEnvelope, error) {
			return s.tmdb.Popular(ctx, page)
		})
}

// Latest returns the discover page through the cache (10 minute window).
func (s *Service) Latest(ctx context.Context, page int) query.Result[tmdb.PageEnvelope] {
	key := query.NewKey("movies", "latest").WithPage(page)
	return query.Get(ctx, s.cache, key, query.Policy{Staleness: query.StalenessLatest},
		func(ctx context.Context) (tmdb.PageEnvelope, error) {
			return s.tmdb.Latest(ctx, page)
		})
}

// Genres returns the genre catalog through the cache. The 24 hour window
// refreshes in the background: a stale catalog is still good enough to
// serve while the new one loads.
func (s *Service) Genres(ctx context.Context) query.Result[tmdb.GenreList] {
	key := query.NewKey("genres")
	policy := query.Policy{Staleness: query.StalenessGenres, BackgroundRefresh: true}
	return query.Get(ctx, s.cache, key, policy,
		func(ctx context.Context) (tmdb.GenreList, error) {
			return s.tmdb.Genres(ctx)
		})
}

// GenreNames resolves genre ids to display names using the cached catalog.
// Unknown ids are skipped.
func (s *Service) GenreNames(ctx context.Context, ids []int) []string {
	result := s.Genres(ctx)
	if !result.HasValue {
		return nil
	}
	byID := make(map[int]string, len(result.Value.Genres))
	for _, g := range result.Value.Genres {
		byID[g.ID] = g.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Detail returns the full movie record through the cache (15 minute
// window).
func (s *Service) Detail(ctx context.Context, id int) query.Result[tmdb.MovieDetail] {
	key := query.NewKey("movies", "detail", strconv.Itoa(id))
	return query.Get(ctx, s.cache, key, query.Policy{Staleness: query.StalenessDetail},
		func(ctx context.Context) (tmdb.MovieDetail, error) {
			return s.tmdb.Detail(ctx, id)
		})
}

// Search returns one search page through the cache (5 minute window).
// An empty term is a disabled query: no request is performed and the
// caller falls back to the discover list.
//
// A successful page-1 search notes a search interaction for clientKey;
// rapid successive terms from the same client coalesce so only the settled
// term records a metric, keyed to its top hit.
func (s *Service) Search(ctx context.Context, clientKey, term string, page int) query.Result[tmdb.PageEnvelope] {
	if term == "" {
		return query.Disabled[tmdb.PageEnvelope]()
	}

	key := query.NewKey("movies", "search", term).WithPage(page)
	result := query.Get(ctx, s.cache, key, query.Policy{Staleness: query.StalenessSearch},
		func(ctx context.Context) (tmdb.PageEnvelope, error) {
			return s.tmdb.Search(ctx, term, page)
		})

	if result.Err == nil && result.HasValue && page == 1 && len(result.Value.Results) > 0 {
		top := result.Value.Results[0]
		s.recorder.Note(clientKey, searchHit{
			term:     term,
			movieID:  top.ID,
			title:    top.Title,
			coverURL: s.tmdb.ImageURL(top.PosterPath, tmdb.SizeW500),
		})
	}
	return result
}

// SearchFeed advances the infinite search feed for term by one page and
// returns every page fetched so far plus whether more exist. Once the
// feed is exhausted, further calls stop advancing and simply return the
// accumulated pages. A failed page fetch keeps earlier pages and is
// retried on the next call.
func (s *Service) SearchFeed(ctx context.Context, clientKey, term string) ([]tmdb.PageEnvelope, bool, error) {
	if term == "" {
		return nil, false, nil
	}

	feed := s.feed(term)
	err := feed.GetNextPage(ctx)

	pages := feed.Pages()
	if err == nil && len(pages) > 0 && len(pages[0].Results) > 0 {
		top := pages[0].Results[0]
		s.recorder.Note(clientKey, searchHit{
			term:     term,
			movieID:  top.ID,
			title:    top.Title,
			coverURL: s.tmdb.ImageURL(top.PosterPath, tmdb.SizeW500),
		})
	}
	return pages, feed.HasNextPage(), err
}

func (s *Service) feed(term string) *query.Infinite[tmdb.PageEnvelope] {
	key := query.NewKey("movies", "search", term, "feed")

	s.feedsMu.Lock()
	defer s.feedsMu.Unlock()
	if feed, ok := s.feeds[key]; ok {
		return feed
	}

	feed := query.NewInfinite(
		func(ctx context.Context, cursor int) (tmdb.PageEnvelope, error) {
			return s.tmdb.Search(ctx, term, cursor)
		},
		func(page tmdb.PageEnvelope) (int, bool) {
			if page.HasNextPage() {
				return page.Page + 1, true
			}
			return 0, false
		},
	)
	s.feeds[key] = feed
	return feed
}

// RecordSearch notes an explicit search-interaction event for clientKey.
// Recording is debounced per client and fails soft like every metrics
// operation.
func (s *Service) RecordSearch(clientKey, term string, movieID int, title, coverURL string) {
	s.recorder.Note(clientKey, searchHit{
		term:     term,
		movieID:  movieID,
		title:    title,
		coverURL: coverURL,
	})
}

// MostSearched returns the metrics ranking through the cache (10 second
// window). The ranking itself fails soft, so the fetch never errors; an
// empty list means "no data".
func (s *Service) MostSearched(ctx context.Context, limit int) []metricstore.RankedMovie {
	key := query.NewKey("metrics", "most-searched", strconv.Itoa(limit))
	result := query.Get(ctx, s.cache, key, query.Policy{Staleness: query.StalenessRanking},
		func(ctx context.Context) ([]metricstore.RankedMovie, error) {
			return s.metrics.RankedMovies(ctx, limit), nil
		})
	if !result.HasValue {
		return []metricstore.RankedMovie{}
	}
	return result.Value
}
