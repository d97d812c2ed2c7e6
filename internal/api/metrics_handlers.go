package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelviewapp/reelview-server/internal/metricstore"
)

func (s *Server) registerMetricsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-most-searched-movies",
		Method:      http.MethodGet,
		Path:        "/api/v1/metrics/most-searched",
		Summary:     "List most searched movies",
		Description: "Movies ranked by accumulated search counts. Empty when metrics are unavailable.",
		Tags:        []string{"Metrics"},
	}, s.handleMostSearched)

	huma.Register(s.api, huma.Operation{
		OperationID:   "record-search",
		Method:        http.MethodPost,
		Path:          "/api/v1/metrics/search",
		Summary:       "Record a search interaction",
		Description:   "Notes that a search query resolved to a movie. Recording is debounced per client and never fails the request.",
		Tags:          []string{"Metrics"},
		DefaultStatus: http.StatusAccepted,
	}, s.handleRecordSearch)
}

// === DTOs ===

// MostSearchedInput contains parameters for the search ranking.
type MostSearchedInput struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max movies to return (default 10)"`
}

// MostSearchedResponse contains the ranked movie list.
type MostSearchedResponse struct {
	Movies []metricstore.RankedMovie `json:"movies" doc:"Movies ordered by search count, most searched first"`
}

// MostSearchedOutput wraps the ranking for Huma.
type MostSearchedOutput struct {
	Body MostSearchedResponse
}

// RecordSearchInput contains a search interaction to record.
type RecordSearchInput struct {
	ClientID string `header:"X-Client-Id" validate:"omitempty,max=100" doc:"Opaque client identifier used to debounce recordings"`
	Body     struct {
		SearchTerm    string `json:"search_term" validate:"required,min=1,max=200" doc:"The search query as typed"`
		MovieID       int    `json:"movie_id" validate:"required,gt=0" doc:"The movie the search resolved to"`
		MovieTitle    string `json:"movie_title" validate:"required,min=1,max=500" doc:"Display title of the movie"`
		CoverImageURL string `json:"cover_img_url" validate:"omitempty,url,max=1000" doc:"Full poster URL of the movie"`
	}
}

// RecordSearchOutput is an empty accepted response.
type RecordSearchOutput struct{}

// === Handlers ===

func (s *Server) handleMostSearched(ctx context.Context, input *MostSearchedInput) (*MostSearchedOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	movies := s.service.MostSearched(ctx, limit)
	return &MostSearchedOutput{Body: MostSearchedResponse{Movies: movies}}, nil
}

func (s *Server) handleRecordSearch(_ context.Context, input *RecordSearchInput) (*RecordSearchOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	s.service.RecordSearch(
		clientKey(input.ClientID),
		input.Body.SearchTerm,
		input.Body.MovieID,
		input.Body.MovieTitle,
		input.Body.CoverImageURL,
	)
	return &RecordSearchOutput{}, nil
}
