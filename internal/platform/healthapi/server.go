/*
Package healthapi wires a minimal chi router exposing the liveness and
readiness probes a container orchestrator needs to run this batch
service. It carries no domain routes: the catalog itself has no HTTP
surface in this system, only the pipeline that feeds its search index.
*/
package healthapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/filmsync/internal/platform/constants"
	"github.com/taibuivan/filmsync/internal/platform/middleware"
)

// Server wraps the chi router and the [http.Server] serving it.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// NewServer builds the chi router with the trimmed middleware chain and
// mounts the liveness/readiness handlers at /healthz and /readyz.
func NewServer(addr string, log *slog.Logger, deps Dependencies, status StatusReader) *Server {
	rte := chi.NewRouter()

	rte.Use(middleware.RequestID())
	rte.Use(middleware.StructuredLogger(log))
	rte.Use(middleware.PanicRecovery(log))

	liveness, readiness := NewHealthHandlers(deps, status, log)
	rte.Get("/healthz", liveness)
	rte.Get("/readyz", readiness)

	return &Server{
		router: rte,
		log:    log,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           rte,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// ListenAndServe starts the HTTP server. It blocks until the server is
// closed or an error occurs, and returns nil on a clean shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("health server starting", slog.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
