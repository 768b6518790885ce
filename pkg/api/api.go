package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

// errMissingToken indicates the API was started without an authentication token.
var errMissingToken = errors.New("HTTP API token is empty")

// HTTPServer is the part of *http.Server the API drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// API is the token-authenticated HTTP server of container-check.
type API struct {
	token      string
	addr       string
	registered bool
	mux        *http.ServeMux
	server     HTTPServer
}

// New creates an API listening on addr.
//
// Parameters:
//   - token: Bearer token every request must carry.
//   - addr: Listen address in host:port form.
//   - server: Optional server replacing the *http.Server built by Start.
//
// Returns:
//   - *API: API without handlers.
func New(token, addr string, server ...HTTPServer) *API {
	api := &API{
		token: token,
		addr:  addr,
		mux:   http.NewServeMux(),
	}

	if len(server) > 0 {
		api.server = server[0]
	}

	logrus.WithField("addr", addr).Debug("Initialized HTTP API")

	return api
}

// Addr formats host and port as a listen address, bracketing IPv6 hosts.
func Addr(host, port string) string {
	if ip := net.ParseIP(host); ip != nil && strings.Contains(host, ":") {
		return "[" + host + "]:" + port
	}

	return host + ":" + port
}

// RegisterFunc registers an authenticated handler function for path.
func (a *API) RegisterFunc(path string, handler http.HandlerFunc) {
	a.mux.Handle(path, a.RequireToken(handler))
	a.registered = true
}

// RegisterHandler registers an authenticated handler for path.
func (a *API) RegisterHandler(path string, handler http.Handler) {
	a.mux.Handle(path, a.RequireToken(handler.ServeHTTP))
	a.registered = true
}

// Handler returns the routing handler, for serving the API from tests.
func (a *API) Handler() http.Handler {
	return a.mux
}

// Start serves the registered handlers until ctx is done.
//
// With block set, Start returns once the server stopped; otherwise it serves in the background and
// returns immediately. Start does nothing when no handler is registered.
//
// Parameters:
//   - ctx: Lifetime of the server.
//   - block: Whether to wait for the server to stop.
//
// Returns:
//   - error: Non-nil if the token is empty, or, when blocking, if serving fails.
func (a *API) Start(ctx context.Context, block bool) error {
	if !a.registered {
		logrus.Debug("No HTTP API handlers registered, skipping HTTP API")

		return nil
	}

	if a.token == "" {
		return errMissingToken
	}

	server := a.server
	if server == nil {
		server = &http.Server{
			Addr:              a.addr,
			Handler:           a.mux,
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       idleTimeout,
			BaseContext:       func(_ net.Listener) context.Context { return ctx },
		}
	}

	logrus.WithField("addr", a.addr).Info("Starting HTTP API")

	if block {
		return RunHTTPServer(ctx, server)
	}

	go func() {
		if err := RunHTTPServer(ctx, server); err != nil {
			logrus.WithError(err).Error("HTTP API stopped")
		}
	}()

	return nil
}

// RequireToken wraps handler so that requests without the bearer token get 401 Unauthorized.
func (a *API) RequireToken(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if a.token == "" || !strings.HasPrefix(auth, "Bearer ") ||
			strings.TrimPrefix(auth, "Bearer ") != a.token {
			logrus.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}).Debug("Rejected unauthenticated HTTP API request")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		handler(w, r)
	}
}

// RunHTTPServer serves until ctx is done, then shuts the server down gracefully.
//
// Parameters:
//   - ctx: Lifetime of the server.
//   - server: Server to run.
//
// Returns:
//   - error: Non-nil if serving or shutting down fails; a clean shutdown returns nil.
func RunHTTPServer(ctx context.Context, server HTTPServer) error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("HTTP API failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP API shutdown failed: %w", err)
		}

		logrus.Debug("HTTP API stopped")

		return nil
	}
}
