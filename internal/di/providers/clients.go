package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelviewapp/reelview-server/internal/config"
	"github.com/reelviewapp/reelview-server/internal/logger"
	"github.com/reelviewapp/reelview-server/internal/metricstore"
	"github.com/reelviewapp/reelview-server/internal/query"
	"github.com/reelviewapp/reelview-server/internal/tmdb"
)

// TMDBClientHandle wraps the movie-metadata client with Shutdownable.
type TMDBClientHandle struct {
	*tmdb.Client
}

// Shutdown implements do.Shutdownable.
func (h *TMDBClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideTMDBClient provides the upstream movie-metadata client.
func ProvideTMDBClient(i do.Injector) (*TMDBClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &TMDBClientHandle{Client: tmdb.NewClient(cfg.TMDB, log.Logger)}, nil
}

// ProvideQueryCache provides the shared in-memory query cache.
func ProvideQueryCache(i do.Injector) (*query.Cache, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return query.NewCache(log.Logger), nil
}

// ProvideMetricsClient provides the search-metrics document-store client.
// An incomplete metrics configuration yields a disabled client; the server
// still starts and serves the browse path.
func ProvideMetricsClient(i do.Injector) (*metricstore.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return metricstore.NewClient(cfg.Metrics, log.Logger), nil
}
