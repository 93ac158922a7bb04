package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dtroode/folio-server/internal/model"
)

var _ model.Server = (*HTTPServer)(nil)

// HTTPServer represents the admin API server.
// It serves an http.Handler and implements model.Server.
type HTTPServer struct {
	server *http.Server
	addr   string
}

// NewHTTPServer creates a new HTTPServer with conservative timeouts.
//
// Parameters:
//   - handler: The root HTTP handler
//   - addr: The address to listen on
//
// Returns a pointer to the newly created HTTPServer instance.
func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		addr: addr,
	}
}

// Start serves on the configured address until Stop is called.
//
// Parameters:
//   - securityLayer: The listener factory, TLS or plain
//
// Returns nil after a graceful stop or an error if listening or serving fails.
func (s *HTTPServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
//
// Parameters:
//   - ctx: Bounds how long shutdown may wait
//
// Returns an error if in-flight requests did not finish in time.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *HTTPServer) Address() string {
	return s.addr
}
