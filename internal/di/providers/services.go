package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelviewapp/reelview-server/internal/logger"
	"github.com/reelviewapp/reelview-server/internal/metricstore"
	"github.com/reelviewapp/reelview-server/internal/movies"
	"github.com/reelviewapp/reelview-server/internal/query"
)

// MovieServiceHandle wraps the movie service with Shutdownable so pending
// debounced metric recordings flush on shutdown.
type MovieServiceHandle struct {
	*movies.Service
}

// Shutdown implements do.Shutdownable.
func (h *MovieServiceHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideMovieService provides the movie browsing and metrics service.
func ProvideMovieService(i do.Injector) (*MovieServiceHandle, error) {
	tmdbHandle := do.MustInvoke[*TMDBClientHandle](i)
	cache := do.MustInvoke[*query.Cache](i)
	metrics := do.MustInvoke[*metricstore.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	service := movies.NewService(tmdbHandle.Client, cache, metrics, log.Logger)
	return &MovieServiceHandle{Service: service}, nil
}
