package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evidence-toolkit/evitool/internal/logging"
)

// Server exposes the default registry's /metrics endpoint over HTTP.
// A zero ListenAddr in config disables it entirely; cmd/evitool only
// constructs one when config.Metrics.ListenAddr is non-empty.
type Server struct {
	http *http.Server
	log  *logging.Logger
}

// NewServer builds (without starting) an HTTP server bound to addr.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		http: &http.Server{Addr: addr, Handler: mux},
		log:  logging.With("component", "metrics-server"),
	}
}

// Start runs the server until ctx is cancelled, then shuts it down
// gracefully. Intended to be run in its own goroutine by the caller.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("metrics server shutdown error", "error", err)
		}
	}()

	s.log.Info("metrics server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
