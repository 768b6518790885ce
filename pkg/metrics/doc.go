// Package metrics provides tracking and export of container-check run metrics.
// It records audit and update outcomes in Prometheus collectors and writes them in the textfile format
// read by the node_exporter textfile collector.
//
// Key components:
//   - Metrics: Holds the collectors and their registry.
//   - NewMetric: Creates metrics from run reports.
//
// Usage example:
//
//	m := metrics.Default()
//	m.RegisterRun(metrics.NewMetric(report))
//	if err := m.WriteTextfile("/var/lib/node_exporter/container_check.prom"); err != nil {
//	    logrus.WithError(err).Warn("Failed to export metrics")
//	}
package metrics
