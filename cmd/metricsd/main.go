// Command metricsd runs the self-hosted metrics document store: a small
// HTTP service over a Badger database, speaking the wire shapes the
// ReelView metrics client expects.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reelviewapp/reelview-server/internal/docstore"
	"github.com/reelviewapp/reelview-server/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("metricsd", flag.ExitOnError)
	port := fs.String("port", envOr("METRICSD_PORT", "9090"), "Listen port")
	dataDir := fs.String("data-dir", envOr("METRICSD_DATA_DIR", "./data/metricsd"), "Badger data directory")
	apiKey := fs.String("api-key", os.Getenv("METRICSD_API_KEY"), "Required API key; empty disables the check")
	env := fs.String("env", envOr("ENV", "development"), "Environment (development, staging, production)")
	logLevel := fs.String("log-level", envOr("LOG_LEVEL", "info"), "Log level")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Environment: *env,
		Level:       logger.ParseLevel(*logLevel),
	})

	store, err := docstore.Open(*dataDir, log.Logger)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer store.Close()

	handler := docstore.NewHandler(store, *apiKey, log.Logger)
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metricsd listening", "port", *port, "data_dir", *dataDir)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("metricsd stopped")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
