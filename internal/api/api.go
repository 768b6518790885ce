// Package api wires the HTTP API endpoints to container-check runs.
package api

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/pkg/api"
	"github.com/nicholas-fedor/container-check/pkg/api/check"
	metricsAPI "github.com/nicholas-fedor/container-check/pkg/api/metrics"
	"github.com/nicholas-fedor/container-check/pkg/metrics"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// CheckFunc performs one run over images, or over the whole inventory when images is empty.
type CheckFunc func(ctx context.Context, images []string) (types.Summary, *metrics.Metric, error)

// Options configures the HTTP API.
type Options struct {
	Host          string           // Bind address, empty for all interfaces.
	Port          string           // Listen port.
	Token         string           // Bearer token.
	EnableCheck   bool             // Serve the check endpoint.
	EnableMetrics bool             // Serve the metrics endpoint.
	Block         bool             // Serve in the foreground until ctx is done.
	Lock          chan bool        // Lock shared with the scheduler.
	Metrics       *metrics.Metrics // Metrics recording API-triggered runs, the default instance when nil.
	MetricsFile   string           // Textfile export refreshed after API-triggered runs.
	Server        api.HTTPServer   // Optional server replacing the real one.
}

// SetupAndStartAPI registers the enabled endpoints and starts the HTTP API.
//
// Parameters:
//   - ctx: Lifetime of the server and of triggered runs.
//   - opts: API options.
//   - run: Function performing a run.
//
// Returns:
//   - error: Non-nil if the API cannot start or, when blocking, stops with an error.
func SetupAndStartAPI(ctx context.Context, opts Options, run CheckFunc) error {
	if err := NewAPI(ctx, opts, run).Start(ctx, opts.Block); err != nil {
		return fmt.Errorf("failed to start HTTP API: %w", err)
	}

	return nil
}

// NewAPI creates the HTTP API with the endpoints enabled in opts.
//
// Runs triggered over HTTP are recorded in the metrics like scheduled runs and use ctx, not the request
// context, so a client disconnecting never interrupts an update transaction. run must return a non-nil
// metric, since a nil metric records a skipped run.
//
// Parameters:
//   - ctx: Context of triggered runs.
//   - opts: API options.
//   - run: Function performing a run.
//
// Returns:
//   - *api.API: API ready to start.
func NewAPI(ctx context.Context, opts Options, run CheckFunc) *api.API {
	var servers []api.HTTPServer
	if opts.Server != nil {
		servers = append(servers, opts.Server)
	}

	httpAPI := api.New(opts.Token, api.Addr(opts.Host, opts.Port), servers...)

	registry := opts.Metrics
	if registry == nil {
		registry = metrics.Default()
	}

	if opts.EnableCheck {
		handler := check.New(func(images []string) (types.Summary, error) {
			summary, metric, err := run(ctx, images)

			registry.RegisterRun(metric)
			exportMetrics(registry, opts.MetricsFile)

			return summary, err
		}, opts.Lock)
		httpAPI.RegisterFunc(handler.Path, handler.Handle)

		logrus.WithField("path", handler.Path).Debug("Registered check endpoint")
	}

	if opts.EnableMetrics {
		handler := metricsAPI.New(registry)
		httpAPI.RegisterHandler(handler.Path, handler.Handle)

		logrus.WithField("path", handler.Path).Debug("Registered metrics endpoint")
	}

	return httpAPI
}

func exportMetrics(registry *metrics.Metrics, path string) {
	if path == "" {
		return
	}

	if err := registry.WriteTextfile(path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("Failed to export metrics")
	}
}
