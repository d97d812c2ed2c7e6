// Package metricstore records and ranks search-popularity metrics against a
// document-store backend.
//
// Metrics are non-critical telemetry: every operation fails soft. Backend
// errors are logged and never surface to callers, and missing configuration
// degrades the client to logged no-ops without touching the browse path.
package metricstore

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/reelviewapp/reelview-server/internal/config"
)

// MetricRecord is one logical (search term, movie) occurrence counter.
// Uniqueness of the pair is enforced by query-before-write in the client,
// not by a backend constraint.
type MetricRecord struct {
	SearchTerm      string `json:"search_term"`
	MovieID         int    `json:"movie_id"`
	MovieTitle      string `json:"movie_title"`
	CoverImageURL   string `json:"cover_img_url"`
	SearchWordCount int    `json:"search_word_count"`
}

// RankedMovie is a read projection derived from metric records; it is never
// persisted.
type RankedMovie struct {
	MovieID          int    `json:"movie_id"`
	MovieTitle       string `json:"movie_title"`
	CoverImageURL    string `json:"cover_img_url"`
	TotalSearchCount int    `json:"total_search_count"`
}

// Client talks to the document store over HTTP.
type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	endpoint     string
	projectID    string
	databaseID   string
	collectionID string
	apiKey       string
	enabled      bool
}

// NewClient creates a metrics client. An incomplete configuration yields a
// client whose operations are logged no-ops.
func NewClient(cfg config.MetricsConfig, logger *slog.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:       logger,
		endpoint:     cfg.Endpoint,
		projectID:    cfg.ProjectID,
		databaseID:   cfg.DatabaseID,
		collectionID: cfg.CollectionID,
		apiKey:       cfg.APIKey,
		enabled:      cfg.Enabled(),
	}
	if !c.enabled {
		logger.Warn("metrics store not fully configured, metrics disabled")
	}
	return c
}

// Enabled reports whether the client has a complete configuration.
func (c *Client) Enabled() bool {
	return c.enabled
}
