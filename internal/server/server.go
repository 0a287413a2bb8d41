// Package server exposes the task API, the browser page and a health probe
// over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzhttp"

	"github.com/idilsaglam/todo/internal/api"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/web"
)

// APIPath is where the task resource is mounted.
const APIPath = "/api/todos"

// Options tune the HTTP server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Server struct {
	store  *store.Store
	logger *log.Logger
	opts   Options
}

func New(st *store.Store, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	return &Server{store: st, logger: logger, opts: opts}
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle(APIPath, api.NewHandler(s.store, s.logger))
	mux.Handle("/", web.Handler(APIPath))

	return withRequestID(withAccessLog(s.logger, gzhttp.GzipHandler(mux)))
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	defer close(stopped)
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown", "err", err)
		}
	}()

	s.logger.Info("listening", "addr", ln.Addr().String(), "tasks", s.store.Len())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		s.logger.Info("server stopped")
		return nil
	}
	return err
}
