// Package keepalive serves a minimal HTTP endpoint that uptime monitors can
// poll to keep the process awake on hosts that idle out silent containers.
package keepalive

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = idleTimeout + 2*time.Second
	shutdownTimeout   = 5 * time.Second
)

// Handler answers every request with 200 and a short plain-text body.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Hello, World!\n"))
	})
	return mux
}

// Server is the keep-alive HTTP server.
type Server struct {
	srv  *http.Server
	addr string
}

// New creates a Server listening on addr.
func New(addr string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Handler(),
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Start listens on the configured address and serves in the background.
// Bind errors are returned; errors after that are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}

	s.addr = ln.Addr().String()
	slog.Info("keep-alive server listening", "addr", s.addr)

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("keep-alive server exited", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	return s.addr
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
