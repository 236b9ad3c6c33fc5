package server

import (
	"context"
	"net/http"
	"time"

	"github.com/yuzvak/resale-backoffice/internal/config"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/handlers"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

type Server struct {
	server         *http.Server
	logger         *logger.Logger
	defaultStation string
	requestTimeout time.Duration
	healthHandler  *handlers.HealthHandler
	buyHandler     *handlers.BuyHandler
	sellHandler    *handlers.SellHandler
}

func NewServer(
	cfg *config.Config,
	buyHandler *handlers.BuyHandler,
	sellHandler *handlers.SellHandler,
	healthHandler *handlers.HealthHandler,
	logger *logger.Logger,
) *Server {
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout.Duration + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s := &Server{
		server:         server,
		logger:         logger,
		defaultStation: cfg.Ledger.DefaultStation,
		requestTimeout: cfg.Server.RequestTimeout.Duration,
		healthHandler:  healthHandler,
		buyHandler:     buyHandler,
		sellHandler:    sellHandler,
	}
	server.Handler = s.setupRoutes()
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
