package metricstore

import (
	"context"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// rankingWindow caps the raw scan behind RankedMovies. Occurrences
// fragmented across many low-count records outside this window are
// undercounted or omitted; a known approximation, not true aggregation.
const rankingWindow = 100

// RecordSearchOccurrence upserts the occurrence counter for the exact
// (term, movieID) pair: found records get their count incremented and their
// display fields refreshed with the latest observed values, otherwise a new
// record starts at 1.
//
// The read-then-write is not atomic across concurrent callers on the same
// pair and can under-count; documented limitation, not fixed at this layer.
// Fails soft: backend errors are logged and swallowed.
func (c *Client) RecordSearchOccurrence(ctx context.Context, term string, movieID int, title, coverURL string) {
	if !c.enabled {
		c.logger.Debug("metrics disabled, dropping search occurrence", "term", term)
		return
	}

	existing, err := c.listDocuments(ctx, []string{
		queryEqual("search_term", term),
		queryEqual("movie_id", movieID),
		queryLimit(1),
	})
	if err != nil {
		c.logger.Warn("metrics lookup failed", "term", term, "movie_id", movieID, "error", err)
		return
	}

	if existing.Total > 0 && len(existing.Documents) > 0 {
		doc := existing.Documents[0]
		record := MetricRecord{
			SearchTerm:      doc.SearchTerm,
			MovieID:         doc.MovieID,
			MovieTitle:      title,
			CoverImageURL:   coverURL,
			SearchWordCount: doc.SearchWordCount + 1,
		}
		if err := c.updateDocument(ctx, doc.ID, record); err != nil {
			c.logger.Warn("metrics update failed", "term", term, "movie_id", movieID, "error", err)
		}
		return
	}

	id, err := gonanoid.New()
	if err != nil {
		c.logger.Warn("metrics id generation failed", "error", err)
		return
	}
	record := MetricRecord{
		SearchTerm:      term,
		MovieID:         movieID,
		MovieTitle:      title,
		CoverImageURL:   coverURL,
		SearchWordCount: 1,
	}
	if err := c.createDocument(ctx, id, record); err != nil {
		c.logger.Warn("metrics create failed", "term", term, "movie_id", movieID, "error", err)
	}
}

// RankedMovies returns up to limit movies ranked by descending occurrence
// count. The store is scanned in count order within a 100-record window,
// keeping the first record seen per movie id, so each movie ranks by its
// best single record.
//
// Fails soft: on any backend error the result is an empty list, which
// callers must treat as "no data", indistinguishable from "store
// unreachable".
func (c *Client) RankedMovies(ctx context.Context, limit int) []RankedMovie {
	if !c.enabled {
		c.logger.Debug("metrics disabled, returning empty ranking")
		return []RankedMovie{}
	}
	if limit <= 0 {
		return []RankedMovie{}
	}

	list, err := c.listDocuments(ctx, []string{
		queryOrderDesc("search_word_count"),
		queryLimit(rankingWindow),
	})
	if err != nil {
		c.logger.Warn("metrics ranking fetch failed", "error", err)
		return []RankedMovie{}
	}

	seen := make(map[int]bool, limit)
	ranked := make([]RankedMovie, 0, limit)
	for _, doc := range list.Documents {
		if seen[doc.MovieID] {
			continue
		}
		if len(ranked) >= limit {
			break
		}
		seen[doc.MovieID] = true
		ranked = append(ranked, RankedMovie{
			MovieID:          doc.MovieID,
			MovieTitle:       doc.MovieTitle,
			CoverImageURL:    doc.CoverImageURL,
			TotalSearchCount: doc.SearchWordCount,
		})
	}
	return ranked
}
