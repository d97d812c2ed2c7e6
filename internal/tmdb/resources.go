package tmdb

import (
	"context"
	"fmt"
	"net/http"

	"github.com/reelviewapp/reelview-server/internal/schema"
)

// Compiled response schemas, one per resource shape.
var (
	pageSchema      = schema.For[PageEnvelope]("MoviePage")
	genreListSchema = schema.For[GenreList]("GenreList")
	detailSchema    = schema.For[MovieDetail]("MovieDetail")
)

// Popular fetches the popular-movies list for the given page.
func (c *Client) Popular(ctx context.Context, page int) (PageEnvelope, error) {
	return Do[PageEnvelope](ctx, c, Request{
		Method:   http.MethodGet,
		Endpoint: "/movie/popular",
		Params: map[string]any{
			"language": c.language,
			"page":     page,
		},
	}, pageSchema)
}

// Latest fetches the discover list for the given page, sorted by descending
// popularity with adult and video content excluded.
func (c *Client) Latest(ctx context.Context, page int) (PageEnvelope, error) {
	return Do[PageEnvelope](ctx, c, Request{
		Method:   http.MethodGet,
		Endpoint: "/discover/movie",
		Params: map[string]any{
			"language":      c.language,
			"page":          page,
			"sort_by":       "popularity.desc",
			"include_adult": false,
			"include_video": false,
		},
	}, pageSchema)
}

// Search runs a full-text movie search for the given query and page.
func (c *Client) Search(ctx context.Context, query string, page int) (PageEnvelope, error) {
	return Do[PageEnvelope](ctx, c, Request{
		Method:   http.MethodGet,
		Endpoint: "/search/movie",
		Params: map[string]any{
			"language": c.language,
			"query":    query,
			"page":     page,
		},
	}, pageSchema)
}

// Genres fetches the full genre catalog.
func (c *Client) Genres(ctx context.Context) (GenreList, error) {
	return Do[GenreList](ctx, c, Request{
		Method:   http.MethodGet,
		Endpoint: "/genre/movie/list",
		Params: map[string]any{
			"language": c.language,
		},
	}, genreListSchema)
}

// Detail fetches the full record for one movie id.
func (c *Client) Detail(ctx context.Context, id int) (MovieDetail, error) {
	return Do[MovieDetail](ctx, c, Request{
		Method:   http.MethodGet,
		Endpoint: fmt.Sprintf("/movie/%d", id),
		Params: map[string]any{
			"language": c.language,
		},
	}, detailSchema)
}
