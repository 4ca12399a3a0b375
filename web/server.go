// Package web provides the HTTP server that serves one lab bundle.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"labserve/config"
	"labserve/log"
	"labserve/web/static"
)

// Server serves the files of a single lab on its own port.
type Server struct {
	lab      config.LabEntry
	root     string
	router   chi.Router
	srv      *http.Server
	listener net.Listener
}

// NewServer creates the server for lab, serving files from root.
func NewServer(lab config.LabEntry, root string) *Server {
	server := &Server{
		lab:  lab,
		root: root,
	}

	router := chi.NewRouter()

	// No request logger: labs are served quietly.
	router.Use(chimiddleware.Recoverer)

	// Test tooling fetches bundles and source maps cross-origin.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Range"},
		ExposedHeaders:   []string{"Content-Length", "Content-Range"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Handle("/*", static.FileServer(root))
	server.router = router

	server.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          log.WarningLog,
	}

	return server
}

// Handler returns the http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the lab's port on host. An empty host binds all interfaces.
func (s *Server) Listen(ctx context.Context, host string) error {
	lc := net.ListenConfig{Control: reuseAddrControl}
	addr := net.JoinHostPort(host, strconv.Itoa(s.lab.Port))
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until Stop is called. It returns nil after a
// clean stop.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server. It also releases a listener that
// Serve was never called on.
func (s *Server) Stop(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// Connections still busy after the deadline are dropped.
		return s.srv.Close()
	}
	return err
}
