// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Reloader swaps in the newest artifacts. Implementations must leave the
// currently served state untouched when Reload fails.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadServiceConfig holds configuration for the artifact reload service.
type ReloadServiceConfig struct {
	// Dir is the artifact directory to watch.
	Dir string

	// Pattern is a filepath.Match pattern applied to the base name of
	// changed files. Empty matches everything.
	Pattern string

	// Debounce coalesces bursts of file events into one reload.
	// Default: 500ms
	Debounce time.Duration

	// PollInterval triggers a reload on a timer as well, for filesystems
	// that do not deliver change events. Zero disables polling.
	PollInterval time.Duration

	// ReloadTimeout bounds a single reload.
	// Default: 5m
	ReloadTimeout time.Duration

	// FailureThreshold is the number of consecutive failed reloads that
	// opens the circuit breaker. While open, triggers are skipped.
	// Default: 3
	FailureThreshold uint32

	// BreakerTimeout is how long the breaker stays open before one trial
	// reload is let through.
	// Default: 1m
	BreakerTimeout time.Duration

	// OnReload is called after every reload attempt.
	OnReload func(err error)
}

// ReloadService watches the artifact directory and calls Reloader when a
// new artifact is published there.
type ReloadService struct {
	reloader Reloader
	breaker  *gobreaker.CircuitBreaker[struct{}]
	config   ReloadServiceConfig
	logger   zerolog.Logger
	name     string
}

// NewReloadService creates a new reload service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloadService(reloader Reloader, cfg ReloadServiceConfig, logger zerolog.Logger) *ReloadService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.ReloadTimeout <= 0 {
		cfg.ReloadTimeout = 5 * time.Minute
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = time.Minute
	}

	s := &ReloadService{
		reloader: reloader,
		config:   cfg,
		logger:   logger.With().Str("service", "artifact-reload").Logger(),
		name:     "artifact-reload",
	}
	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        s.name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("reload circuit breaker state changed")
		},
	})
	return s
}

// Serve implements suture.Service. A watcher setup failure is returned so
// the supervisor restarts the service with backoff.
func (s *ReloadService) Serve(ctx context.Context) error {
	if s.config.Dir == "" {
		return errors.New("reload service: no directory configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }() //nolint:errcheck // close error on shutdown is not actionable

	if err := watcher.Add(s.config.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.config.Dir, err)
	}

	var pollC <-chan time.Time
	if s.config.PollInterval > 0 {
		ticker := time.NewTicker(s.config.PollInterval)
		defer ticker.Stop()
		pollC = ticker.C
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	s.logger.Info().
		Str("dir", s.config.Dir).
		Dur("debounce", s.config.Debounce).
		Dur("poll_interval", s.config.PollInterval).
		Msg("artifact reload service running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("artifact reload service shutting down")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if !s.relevant(event) {
				continue
			}
			s.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("artifact change detected")
			debounce.Reset(s.config.Debounce)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			s.logger.Warn().Err(werr).Msg("watcher error")

		case <-debounce.C:
			s.reload(ctx, "file change")

		case <-pollC:
			s.reload(ctx, "poll")
		}
	}
}

func (s *ReloadService) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	if s.config.Pattern == "" {
		return true
	}
	matched, err := filepath.Match(s.config.Pattern, filepath.Base(event.Name))
	return err == nil && matched
}

func (s *ReloadService) reload(ctx context.Context, trigger string) {
	reloadCtx, cancel := context.WithTimeout(ctx, s.config.ReloadTimeout)
	defer cancel()

	start := time.Now()
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.reloader.Reload(reloadCtx)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.logger.Debug().Str("trigger", trigger).Msg("artifact reload skipped, circuit open")
	case err != nil:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("artifact reload failed, keeping current artifacts")
	default:
		s.logger.Info().Str("trigger", trigger).Dur("duration", time.Since(start)).Msg("artifact reload complete")
	}
	if s.config.OnReload != nil {
		s.config.OnReload(err)
	}
}

// String returns the service name for logging.
func (s *ReloadService) String() string {
	return s.name
}
