// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerank/internal/api"
	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
	"github.com/tomtom215/cinerank/internal/supervisor"
	"github.com/tomtom215/cinerank/internal/supervisor/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation API",
	Long: `Serve the HTTP API from the latest bundle (or artifacts.version when
pinned). With artifacts.watch enabled the server starts even when no
bundle exists yet, reports not ready, and publishes the first bundle
that appears.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logging.Info().Str("addr", cfg.Server.Addr()).Str("artifacts", cfg.Artifacts.Dir).Msg("Starting CineRank with supervisor tree")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}

	holder := api.NewEngineHolder(store, cfg.Artifacts.Name, cfg.Artifacts.Version, cfg.Recommend.Engine(), logging.WithComponent("engine"))
	if err := holder.Reload(ctx); err != nil {
		if !cfg.Artifacts.Watch {
			return fmt.Errorf("load model: %w", err)
		}
		logging.Warn().Err(err).Msg("No model loaded yet, serving not ready until a bundle is published")
	}

	handler := api.NewHandler(holder, api.HandlerConfig{
		CacheSize:      cfg.API.CacheSize,
		CacheTTL:       cfg.API.CacheTTL,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	if cfg.API.RateLimitRequests == 0 {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_REQUESTS=0)")
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.API)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// sutureslog needs slog; the adapter forwards to zerolog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	if cfg.Artifacts.Watch {
		tree.AddDataService(services.NewReloadService(holder, services.ReloadServiceConfig{
			Dir:          store.Dir(),
			Pattern:      storage.FilePattern(cfg.Artifacts.Name),
			PollInterval: cfg.Artifacts.PollInterval,
		}, logging.WithComponent("reload")))
		logging.Info().Str("dir", store.Dir()).Dur("poll_interval", cfg.Artifacts.PollInterval).Msg("Watching for new bundles")
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The channel receives exactly one value when the root supervisor returns.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	stop()
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}
	if serveErr != nil {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if serveErr != nil {
		return serveErr
	}
	logging.Info().Msg("CineRank stopped gracefully")
	return nil
}
