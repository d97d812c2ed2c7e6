// Package di provides dependency injection configuration for the ReelView server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/reelviewapp/reelview-server/internal/config"
	"github.com/reelviewapp/reelview-server/internal/di/providers"
	"github.com/reelviewapp/reelview-server/internal/logger"
	"github.com/reelviewapp/reelview-server/internal/metricstore"
	"github.com/reelviewapp/reelview-server/internal/query"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Upstream clients
	do.Provide(injector, providers.ProvideTMDBClient)
	do.Provide(injector, providers.ProvideQueryCache)
	do.Provide(injector, providers.ProvideMetricsClient)

	// Business services
	do.Provide(injector, providers.ProvideMovieService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of the full chain up to the
// running HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.TMDBClientHandle](injector)
	_ = do.MustInvoke[*query.Cache](injector)
	_ = do.MustInvoke[*metricstore.Client](injector)
	_ = do.MustInvoke[*providers.MovieServiceHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
