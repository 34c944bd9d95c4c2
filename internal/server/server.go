// package server contains the router, middleware and handlers for the local OAuth callback listener
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// See [LoggingMiddleware] and [RecoverMiddleware].
type Middleware func(http.Handler) http.Handler

// Handler is an endpoint mounted on a [CallbackRouter], such as the OAuth callback.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Listener serves a [CallbackRouter] on a local address until shut down.
type Listener struct {
	srv    *http.Server
	ln     net.Listener
	logger *log.Logger
}

// Listen binds addr and serves handler in the background. Use port 0 for an ephemeral port.
func Listen(addr string, handler http.Handler, logger *log.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Listener{
		srv:    &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		ln:     ln,
		logger: logger,
	}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server stopped", "error", err)
		}
	}()

	logger.Debug("callback server listening", "addr", l.Addr())
	return l, nil
}

// Addr returns the bound address, including the port chosen for port 0.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (l *Listener) Shutdown(ctx context.Context) error {
	return l.srv.Shutdown(ctx)
}
