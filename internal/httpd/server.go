package httpd

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/avasile/crosscheck/pkg/config"
)

// Server wraps the API handler in an http.Server with the configured
// timeouts.
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer builds a server around the handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("Starting server")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server")
	return s.server.Shutdown(ctx)
}
