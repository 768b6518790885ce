package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicholas-fedor/container-check/pkg/session"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// errWriteTextfileFailed indicates the metrics could not be exported.
var errWriteTextfileFailed = errors.New("failed to write metrics textfile")

// Metric holds data points from a container-check run.
type Metric struct {
	Audited            int            // Number of containers inspected.
	InspectionFailures int            // Number of failed inspections.
	Stale              int            // Number of containers with stale packages.
	StalePackages      int            // Total stale package entries.
	Updated            int            // Number of committed updates.
	UpdateFailures     map[string]int // Failed updates per failed step.
	DurationSeconds    float64        // Run duration.
	Timestamp          float64        // Run end as Unix seconds.
	Succeeded          bool           // Overall run outcome.
}

// Metrics holds the Prometheus collectors of a process.
type Metrics struct {
	mu                 sync.Mutex
	registry           *prometheus.Registry
	audited            prometheus.Gauge
	inspectionFailures prometheus.Gauge
	stale              prometheus.Gauge
	stalePackages      prometheus.Gauge
	updated            prometheus.Gauge
	updateFailures     *prometheus.GaugeVec
	updateFailedTotal  *prometheus.CounterVec
	success            prometheus.Gauge
	duration           prometheus.Gauge
	timestamp          prometheus.Gauge
	total              prometheus.Counter
	skipped            prometheus.Counter
}

// NewWithRegistry creates a Metrics handler registered against registry.
//
// Parameters:
//   - registry: Prometheus registry used for registration and export.
//
// Returns:
//   - (*Metrics, error): Metrics handler, or an error if registration fails.
func NewWithRegistry(registry *prometheus.Registry) (*Metrics, error) {
	metrics := &Metrics{
		registry: registry,
		audited: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "container_check_containers_audited",
			Help: "Number of container images inspected during the last run",
		}),
		inspectionFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "container_check_inspection_failures",
			Help: "Number of container images whose package list could not be obtained during the last run",
		}),
		stale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "container_check_containers_stale",
			Help: "Number of container images with packages missing from the baseline during the last run",
		}),
		stalePackages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "container_check_stale_packages",
			Help: "Number of stale package entries across all container images during the last run",
		}),
		updated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "container_check_containers_updated",
			Help: "Number of container images updated and committed during the last run",
		}),
		updateFailures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "container_check_update_failures",
			Help: "Number of failed update transactions during the last run by failed step",
		}, []string{"step"}),
		updateFailedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "container_check_update_failures_total",
			Help: "Total number of failed update transactions by failed step",
		}, []string{"step"}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "container_check_last_run_success",
			Help: "Whether the last run succeeded (1) or not (0)",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "container_check_last_run_duration_seconds",
			Help: "Duration of the last run in seconds",
		}),
		timestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "container_check_last_run_timestamp_seconds",
			Help: "Unix time at which the last run finished",
		}),
		total: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "container_check_runs_total",
			Help: "Number of runs since container-check started",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "container_check_runs_skipped_total",
			Help: "Number of scheduled runs skipped because the previous run was still active",
		}),
	}

	collectors := []prometheus.Collector{
		metrics.audited,
		metrics.inspectionFailures,
		metrics.stale,
		metrics.stalePackages,
		metrics.updated,
		metrics.updateFailures,
		metrics.updateFailedTotal,
		metrics.success,
		metrics.duration,
		metrics.timestamp,
		metrics.total,
		metrics.skipped,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return metrics, nil
}

// NewMetric creates a Metric from a run report.
//
// Parameters:
//   - report: Finished run.
//
// Returns:
//   - *Metric: New metric instance.
func NewMetric(report *session.Report) *Metric {
	if report == nil {
		panic("NewMetric: report is nil")
	}

	stale := report.StaleContainers()
	metric := &Metric{
		Audited:            report.Audited(),
		InspectionFailures: len(report.InspectionFailures()),
		Stale:              len(stale),
		StalePackages:      types.StaleReport(stale).PackageCount(),
		Updated:            len(report.UpdatedContainers()),
		UpdateFailures:     map[string]int{},
		DurationSeconds:    report.Duration().Seconds(),
		Timestamp:          float64(report.Metadata().FinishedAt.Unix()),
		Succeeded:          report.Succeeded(),
	}

	for _, status := range report.All() {
		if status.State() == session.UpdateFailedState {
			metric.UpdateFailures[status.Failure().String()]++
		}
	}

	return metric
}

// Default initializes or returns the process-wide Metrics handler on its own registry.
//
// Returns:
//   - *Metrics: Metrics handler.
func Default() *Metrics {
	metricsOnce.Do(func() {
		var err error

		metrics, err = NewWithRegistry(prometheus.NewRegistry())
		if err != nil {
			panic(err)
		}
	})

	return metrics
}

// RegisterRun records a finished run. A nil metric records a skipped run.
//
// Parameters:
//   - metric: Metric to record.
func (m *Metrics) RegisterRun(metric *Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total.Inc()

	if metric == nil {
		m.skipped.Inc()

		return
	}

	m.audited.Set(float64(metric.Audited))
	m.inspectionFailures.Set(float64(metric.InspectionFailures))
	m.stale.Set(float64(metric.Stale))
	m.stalePackages.Set(float64(metric.StalePackages))
	m.updated.Set(float64(metric.Updated))
	m.duration.Set(metric.DurationSeconds)
	m.timestamp.Set(metric.Timestamp)

	// Steps are reset so a step that stopped failing reads zero.
	for _, step := range []types.FailureKind{types.FailureUpdateStep, types.FailureCommit} {
		count := metric.UpdateFailures[step.String()]
		m.updateFailures.WithLabelValues(step.String()).Set(float64(count))
		m.updateFailedTotal.WithLabelValues(step.String()).Add(float64(count))
	}

	if metric.Succeeded {
		m.success.Set(1)
	} else {
		m.success.Set(0)
	}
}

// Registry returns the registry the collectors are registered against.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile exports the current values in the node_exporter textfile format.
//
// Parameters:
//   - path: Destination file, replaced atomically.
//
// Returns:
//   - error: Non-nil if gathering or writing fails.
func (m *Metrics) WriteTextfile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", errWriteTextfileFailed, err)
	}

	return nil
}
