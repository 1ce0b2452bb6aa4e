// Package server wires the HTTP listener to the Crash-Mover and
// implements graceful shutdown per spec.md §4.10: stop accepting new
// connections, let the hand-off queue and in-flight workers drain within
// a deadline, and report a non-zero exit if work was still outstanding
// when the deadline expired.
//
// Grounded on the teacher's cmd/dittofs/main.go / commands/start.go
// signal-handling and serverDone-channel pattern; the teacher has no
// standalone pkg/server, so that shutdown sequencing was reimplemented
// here as an injectable type instead of inline in main.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mozilla-services/antenna/internal/logger"
	"github.com/mozilla-services/antenna/pkg/mover"
)

// Server owns the HTTP listener and the Crash-Mover's lifecycle.
type Server struct {
	HTTP            *http.Server
	Mover           *mover.Mover
	ShutdownTimeout time.Duration
}

// New builds a Server serving handler on addr, with the Crash-Mover
// shutdown bounded by shutdownTimeout.
func New(addr string, handler http.Handler, mv *mover.Mover, shutdownTimeout time.Duration) *Server {
	return &Server{
		HTTP:            &http.Server{Addr: addr, Handler: handler},
		Mover:           mv,
		ShutdownTimeout: shutdownTimeout,
	}
}

// Serve starts the Crash-Mover and HTTP listener, blocking until ctx is
// cancelled, then runs the graceful shutdown sequence. It returns a
// non-nil error if shutdown did not complete cleanly within
// ShutdownTimeout, corresponding to exit code 1 in §7.
func (s *Server) Serve(ctx context.Context) error {
	// Workers outlive ctx so queued and in-flight saves/publishes can finish
	// during the shutdown drain; Mover.Shutdown bounds that wait.
	s.Mover.Start(context.WithoutCancel(ctx))

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.HTTP.Addr)
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return s.shutdown()
	}
}

// shutdown stops accepting new connections immediately, then gives the
// Crash-Mover up to ShutdownTimeout to drain its hand-off queue and
// finish in-flight saves/publishes.
func (s *Server) shutdown() error {
	logger.Info("shutting down: no longer accepting connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()

	if err := s.HTTP.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", logger.Err(err))
	}

	moverCtx, moverCancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer moverCancel()

	if err := s.Mover.Shutdown(moverCtx); err != nil {
		logger.Error("crash mover did not drain before shutdown deadline", logger.Err(err))
		return fmt.Errorf("shutdown deadline exceeded with work still queued: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
