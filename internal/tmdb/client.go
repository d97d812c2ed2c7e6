// Package tmdb provides a typed client for the TMDB movie-metadata API.
//
// Every request is executed through a single generic path that builds the
// URL, applies bearer auth, rate limits, and validates the decoded response
// against a declared schema before it becomes a typed value.
package tmdb

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/reelviewapp/reelview-server/internal/config"
)

// Client provides access to the TMDB REST API.
type Client struct {
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	logger       *slog.Logger
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
}

// NewClient creates a new TMDB client.
// Rate limited to 40 requests per second, under TMDB's documented ~50 rps cap.
func NewClient(cfg config.TMDBConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter:  rate.NewLimiter(rate.Limit(40), 10),
		logger:       logger,
		baseURL:      cfg.BaseURL,
		imageBaseURL: cfg.ImageBaseURL,
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
	}
}

// Close releases resources. Currently a no-op but included for interface consistency.
func (c *Client) Close() {
	// No persistent resources to close
}
