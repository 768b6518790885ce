// Package metrics serves the container-check Prometheus registry over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/pkg/metrics"
)

// Path is the endpoint the handler is registered on.
const Path = "/v1/metrics"

// Handler serves metric data in the Prometheus exposition format.
type Handler struct {
	Path    string
	Handle  http.Handler
	Metrics *metrics.Metrics
}

// New creates a handler for the run metrics.
//
// Parameters:
//   - registry: Metrics to serve, the default instance when nil.
//
// Returns:
//   - *Handler: Handler for Path.
func New(registry *metrics.Metrics) *Handler {
	if registry == nil {
		registry = metrics.Default()
	}

	return &Handler{
		Path: Path,
		Handle: promhttp.HandlerFor(registry.Registry(), promhttp.HandlerOpts{
			ErrorLog:      logrus.StandardLogger(),
			ErrorHandling: promhttp.ContinueOnError,
		}),
		Metrics: registry,
	}
}
