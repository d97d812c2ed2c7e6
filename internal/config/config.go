// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	TMDB    TMDBConfig
	Metrics MetricsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// TMDBConfig holds upstream movie-metadata API configuration.
type TMDBConfig struct {
	// APIKey is the bearer token for api.themoviedb.org. Required.
	APIKey string
	// BaseURL of the REST API (default: https://api.themoviedb.org/3).
	BaseURL string
	// ImageBaseURL is the image host prefix (default: https://image.tmdb.org/t/p).
	ImageBaseURL string
	// Language is the fixed locale sent with every request (default: en-US).
	Language string
}

// MetricsConfig holds the search-metrics document-store configuration.
// All fields are required for metrics to be active; any missing value
// degrades the metrics features to logged no-ops without affecting the
// movie-browsing path.
type MetricsConfig struct {
	Endpoint     string // Document-store endpoint URL
	ProjectID    string
	DatabaseID   string
	CollectionID string
	APIKey       string // Optional server key
}

// Enabled reports whether the metrics store is fully configured.
func (m MetricsConfig) Enabled() bool {
	return m.Endpoint != "" && m.ProjectID != "" && m.DatabaseID != "" && m.CollectionID != ""
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("reelview", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	tmdbKey := fs.String("tmdb-api-key", "", "TMDB API bearer token")
	tmdbBaseURL := fs.String("tmdb-base-url", "", "TMDB API base URL")
	tmdbImageURL := fs.String("tmdb-image-base-url", "", "TMDB image host base URL")
	tmdbLanguage := fs.String("tmdb-language", "", "Locale sent with TMDB requests (default: en-US)")

	metricsEndpoint := fs.String("metrics-endpoint", "", "Metrics document-store endpoint URL")
	metricsProject := fs.String("metrics-project-id", "", "Metrics document-store project ID")
	metricsDatabase := fs.String("metrics-database-id", "", "Metrics database ID")
	metricsCollection := fs.String("metrics-collection-id", "", "Metrics collection ID")
	metricsKey := fs.String("metrics-api-key", "", "Metrics document-store API key")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		TMDB: TMDBConfig{
			APIKey:       getConfigValue(*tmdbKey, "TMDB_API_KEY", ""),
			BaseURL:      getConfigValue(*tmdbBaseURL, "TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: getConfigValue(*tmdbImageURL, "TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
			Language:     getConfigValue(*tmdbLanguage, "TMDB_LANGUAGE", "en-US"),
		},
		Metrics: MetricsConfig{
			Endpoint:     getConfigValue(*metricsEndpoint, "METRICS_ENDPOINT", ""),
			ProjectID:    getConfigValue(*metricsProject, "METRICS_PROJECT_ID", ""),
			DatabaseID:   getConfigValue(*metricsDatabase, "METRICS_DATABASE_ID", ""),
			CollectionID: getConfigValue(*metricsCollection, "METRICS_COLLECTION_ID", ""),
			APIKey:       getConfigValue(*metricsKey, "METRICS_API_KEY", ""),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDuration(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDuration(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDuration(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.TMDB.APIKey == "" {
		return errors.New("TMDB_API_KEY is required")
	}
	if _, err := url.Parse(c.TMDB.BaseURL); err != nil {
		return fmt.Errorf("invalid TMDB base URL %q: %w", c.TMDB.BaseURL, err)
	}

	// Metrics configuration is optional: the metrics client degrades to
	// no-ops when incomplete. A malformed endpoint is still an error.
	if c.Metrics.Endpoint != "" {
		if _, err := url.Parse(c.Metrics.Endpoint); err != nil {
			return fmt.Errorf("invalid metrics endpoint %q: %w", c.Metrics.Endpoint, err)
		}
	}

	return nil
}

// parseDuration resolves a duration from flag, env var, or default.
func parseDuration(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", raw, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
