package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/yigit/hireloop/internal/bootstrap"
	"github.com/yigit/hireloop/internal/config"
)

const shutdownGrace = 15 * time.Second

// Server owns the HTTP listener and everything BuildDependencies started
type Server struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	deps   *bootstrap.Dependencies
	log    zerolog.Logger
	server *http.Server
}

// NewServer loads configuration, migrates and seeds the database and wires the API
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	pool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, pool, lgr)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("dependencies: %w", err)
	}

	// WriteTimeout stays generous for resume uploads; websocket
	// connections are hijacked and not bound by it.
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           bootstrap.SetupRouter(cfg, deps, lgr),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{cfg: cfg, pool: pool, deps: deps, log: lgr, server: httpServer}, nil
}

// Run serves until SIGINT/SIGTERM or a listener failure, then drains
// in-flight requests and releases background workers and pools.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("HireLoop API listening")
		listenErr <- s.server.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		s.release()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		s.log.Info().Msg("Shutdown signal received")
	}

	return s.Shutdown(context.Background())
}

// Shutdown stops accepting connections and waits up to shutdownGrace for
// active requests before releasing resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("HTTP server did not drain in time")
	}
	s.release()

	s.log.Info().Msg("Shutdown complete")
	return err
}

// release stops the websocket hub, flushes the event producer and closes the pools
func (s *Server) release() {
	if s.deps != nil {
		s.deps.Close()
	}
	if s.pool != nil {
		s.pool.Close()
		s.log.Info().Msg("Database pool closed")
	}
}
