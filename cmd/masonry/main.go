// Package main is the entry point for the masonry layout-ordering server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"masonry/config"
	"masonry/internal/cache"
	"masonry/internal/core"
	"masonry/internal/dimensions"
	"masonry/internal/httpclient"
	"masonry/internal/layout"
	"masonry/internal/observability"
	"masonry/internal/server"
	"masonry/internal/service"
	"masonry/internal/upstream"
	"masonry/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.Server.LogFormat)

	slog.Info("starting masonry",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := newStore(cfg)
	if err != nil {
		slog.Error("failed to initialize cache store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	src, err := newSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize upstream source", "error", err)
		os.Exit(1)
	}
	defer func() { _ = src.Close() }()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	}

	svc := service.New(service.Deps{
		Source:     src,
		Dimensions: dimensions.NewProvider(src, store, cfg.Cache.DimensionTTL, metrics),
		Orders:     cache.NewOrderCache(store, cfg.Cache.OrderTTL, metrics),
		Store:      store,
		Orderer:    layout.NewSkyline(cfg.Layout.WideThreshold),
		Metrics:    metrics,
	}, &service.Config{
		RequestTimeout: cfg.Server.RequestTimeout,
		FallbackTTL:    cfg.Cache.FallbackTTL,
	})

	srv := server.New(svc, &server.Config{
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
	})

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	slog.Info("starting server",
		"address", addr,
		"cache_backend", store.Kind(),
		"order_ttl", cfg.Cache.OrderTTL,
		"dimension_ttl", cfg.Cache.DimensionTTL,
		"wide_threshold", cfg.Layout.WideThreshold,
	)

	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
		} else {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}

// setupLogging configures the default slog logger: JSON in production,
// tint's colorized output for local development.
func setupLogging(format string) {
	var handler slog.Handler
	if format == "pretty" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{TimeFormat: time.TimeOnly})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// newStore selects the cache backend: Redis when configured, otherwise an
// in-process store.
func newStore(cfg *config.Config) (cache.Store, error) {
	if cfg.Cache.RedisURL != "" {
		return cache.NewRedisStore(cfg.Cache.RedisURL, "")
	}
	return cache.NewMemoryStore(cache.DefaultGCInterval), nil
}

// newSource selects the upstream reader: direct Postgres when DATABASE_URL is
// set, otherwise the internal CRUD API over HTTP.
func newSource(ctx context.Context, cfg *config.Config) (core.Source, error) {
	if cfg.Upstream.DatabaseURL != "" {
		slog.Info("using postgres upstream")
		return upstream.NewPostgresSource(ctx, cfg.Upstream.DatabaseURL, int32(cfg.Upstream.MaxConns))
	}
	slog.Info("using http upstream", "base_url", cfg.Upstream.BaseURL)
	return upstream.NewHTTPSource(cfg.Upstream.BaseURL, httpclient.New(nil))
}
