package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelviewapp/reelview-server/internal/query"
	"github.com/reelviewapp/reelview-server/internal/tmdb"
)

// Sources reported on search responses. An empty query performs no search
// and the discover list is served instead.
const (
	SourceSearch   = "search"
	SourceDiscover = "discover"
)

func (s *Server) registerMovieRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-popular-movies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/popular",
		Summary:     "List popular movies",
		Description: "Movies ordered by current popularity, one page at a time",
		Tags:        []string{"Movies"},
	}, s.handlePopular)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-latest-movies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/latest",
		Summary:     "List latest movies",
		Description: "The discover feed, excluding adult titles and videos",
		Tags:        []string{"Movies"},
	}, s.handleLatest)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-movies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/search",
		Summary:     "Search movies",
		Description: "Title search. An empty query falls back to the discover feed.",
		Tags:        []string{"Movies"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-movies-feed",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/search/feed",
		Summary:     "Search movies as an infinite feed",
		Description: "Each call advances the feed for the query by one page and returns everything fetched so far",
		Tags:        []string{"Movies"},
	}, s.handleSearchFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-movie",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/{id}",
		Summary:     "Get movie details",
		Tags:        []string{"Movies"},
	}, s.handleDetail)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-genres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "The genre catalog used to resolve genre ids on movie lists",
		Tags:        []string{"Movies"},
	}, s.handleGenres)
}

// === DTOs ===

// PageInput contains pagination parameters for movie list endpoints.
type PageInput struct {
	Page int `query:"page" validate:"omitempty,gte=1,lte=500" doc:"Page number (default 1)"`
}

// SearchInput contains parameters for searching movies.
type SearchInput struct {
	ClientID string `header:"X-Client-Id" validate:"omitempty,max=100" doc:"Opaque client identifier used to debounce search metrics"`
	Query    string `query:"q" validate:"omitempty,max=200" doc:"Search query. Empty falls back to the discover feed."`
	Page     int    `query:"page" validate:"omitempty,gte=1,lte=500" doc:"Page number (default 1)"`
}

// SearchFeedInput contains parameters for the infinite search feed.
type SearchFeedInput struct {
	ClientID string `header:"X-Client-Id" validate:"omitempty,max=100" doc:"Opaque client identifier used to debounce search metrics"`
	Query    string `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
}

// DetailInput identifies a single movie.
type DetailInput struct {
	ID int `path:"id" validate:"required,gt=0" doc:"Movie ID"`
}

// MovieItem is one movie in a list response, enriched with resolved image
// URLs and genre names.
type MovieItem struct {
	tmdb.MovieSummary
	PosterURL   string   `json:"poster_url,omitempty" doc:"Full poster image URL"`
	BackdropURL string   `json:"backdrop_url,omitempty" doc:"Full backdrop image URL"`
	GenreNames  []string `json:"genre_names,omitempty" doc:"Resolved genre display names"`
}

// MoviePage is one page of movies in the format expected by mobile clients.
type MoviePage struct {
	Page         int         `json:"page" doc:"Current page number"`
	Results      []MovieItem `json:"results" doc:"Movies on this page"`
	TotalPages   int         `json:"total_pages" doc:"Total number of pages"`
	TotalResults int         `json:"total_results" doc:"Total number of matches"`
	NextPage     *int        `json:"next_page,omitempty" doc:"Next page number, absent on the last page"`
	Stale        bool        `json:"stale,omitempty" doc:"True when served from cache past its freshness window"`
}

// MoviePageOutput wraps a movie page for Huma.
type MoviePageOutput struct {
	Body MoviePage
}

// SearchPage is a movie page annotated with where it came from.
type SearchPage struct {
	MoviePage
	Source string `json:"source" enum:"search,discover" doc:"Whether results come from the search or the discover feed"`
}

// SearchOutput wraps a search page for Huma.
type SearchOutput struct {
	Body SearchPage
}

// SearchFeedResponse contains every page fetched so far for one feed query.
type SearchFeedResponse struct {
	Query       string      `json:"query" doc:"Original search query"`
	Results     []MovieItem `json:"results" doc:"All movies fetched so far, in page order"`
	PagesLoaded int         `json:"pages_loaded" doc:"Number of pages fetched so far"`
	HasNextPage bool        `json:"has_next_page" doc:"Whether a further page exists"`
}

// SearchFeedOutput wraps a feed response for Huma.
type SearchFeedOutput struct {
	Body SearchFeedResponse
}

// MovieDetailResponse is the full movie record with resolved image URLs.
type MovieDetailResponse struct {
	tmdb.MovieDetail
	PosterURL   string `json:"poster_url,omitempty" doc:"Full poster image URL"`
	BackdropURL string `json:"backdrop_url,omitempty" doc:"Full backdrop image URL"`
}

// MovieDetailOutput wraps a movie detail for Huma.
type MovieDetailOutput struct {
	Body MovieDetailResponse
}

// GenresOutput wraps the genre catalog for Huma.
type GenresOutput struct {
	Body tmdb.GenreList
}

// === Handlers ===

func (s *Server) handlePopular(ctx context.Context, input *PageInput) (*MoviePageOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	result := s.service.Popular(ctx, defaultPage(input.Page))
	page, err := s.moviePage(ctx, result)
	if err != nil {
		return nil, err
	}
	return &MoviePageOutput{Body: page}, nil
}

func (s *Server) handleLatest(ctx context.Context, input *PageInput) (*MoviePageOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	result := s.service.Latest(ctx, defaultPage(input.Page))
	page, err := s.moviePage(ctx, result)
	if err != nil {
		return nil, err
	}
	return &MoviePageOutput{Body: page}, nil
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	page := defaultPage(input.Page)
	result := s.service.Search(ctx, clientKey(input.ClientID), input.Query, page)

	source := SourceSearch
	if result.Disabled {
		// Empty query: serve the discover feed instead.
		source = SourceDiscover
		result = s.service.Latest(ctx, page)
	}

	body, err := s.moviePage(ctx, result)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: SearchPage{MoviePage: body, Source: source}}, nil
}

func (s *Server) handleSearchFeed(ctx context.Context, input *SearchFeedInput) (*SearchFeedOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	pages, hasNext, err := s.service.SearchFeed(ctx, clientKey(input.ClientID), input.Query)
	if err != nil && len(pages) == 0 {
		return nil, err
	}
	if err != nil {
		s.logger.Warn("Search feed page fetch failed, serving loaded pages",
			"query", input.Query, "pages", len(pages), "error", err)
	}

	resp := SearchFeedResponse{
		Query:       input.Query,
		Results:     make([]MovieItem, 0),
		PagesLoaded: len(pages),
		HasNextPage: hasNext,
	}
	for _, page := range pages {
		resp.Results = append(resp.Results, s.movieItems(ctx, page.Results)...)
	}
	return &SearchFeedOutput{Body: resp}, nil
}

func (s *Server) handleDetail(ctx context.Context, input *DetailInput) (*MovieDetailOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	result := s.service.Detail(ctx, input.ID)
	if !result.HasValue {
		return nil, result.Err
	}

	detail := result.Value
	return &MovieDetailOutput{Body: MovieDetailResponse{
		MovieDetail: detail,
		PosterURL:   s.service.ImageURL(detail.PosterPath, tmdb.SizeW500),
		BackdropURL: s.service.ImageURL(detail.BackdropPath, tmdb.SizeW780),
	}}, nil
}

func (s *Server) handleGenres(ctx context.Context, _ *struct{}) (*GenresOutput, error) {
	result := s.service.Genres(ctx)
	if !result.HasValue {
		return nil, result.Err
	}
	return &GenresOutput{Body: result.Value}, nil
}

// === Helpers ===

func defaultPage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// moviePage converts a cached page result into the response shape. A stale
// value is still served; only a lookup with nothing cached fails.
func (s *Server) moviePage(ctx context.Context, result query.Result[tmdb.PageEnvelope]) (MoviePage, error) {
	if !result.HasValue {
		return MoviePage{}, result.Err
	}

	envelope := result.Value
	page := MoviePage{
		Page:         envelope.Page,
		Results:      s.movieItems(ctx, envelope.Results),
		TotalPages:   envelope.TotalPages,
		TotalResults: envelope.TotalResults,
		Stale:        result.Stale,
	}
	if envelope.HasNextPage() {
		next := envelope.Page + 1
		page.NextPage = &next
	}
	return page, nil
}

func (s *Server) movieItems(ctx context.Context, summaries []tmdb.MovieSummary) []MovieItem {
	items := make([]MovieItem, 0, len(summaries))
	for _, m := range summaries {
		items = append(items, MovieItem{
			MovieSummary: m,
			PosterURL:    s.service.ImageURL(m.PosterPath, tmdb.SizeW500),
			BackdropURL:  s.service.ImageURL(m.BackdropPath, tmdb.SizeW780),
			GenreNames:   s.service.GenreNames(ctx, m.GenreIDs),
		})
	}
	return items
}
