// Package session tracks container states during a container-check run and reports on them.
// It folds the audit, update and verification results into per-container statuses and renders the
// final report as log lines, text, JSON or YAML.
//
// Key components:
//   - State: Enum for container states (e.g., Stale, Updated).
//   - ContainerStatus: Tracks individual container details and state.
//   - Progress: Maps container statuses during a run.
//   - Report: Sorted, immutable view of a finished run implementing types.Summary.
//
// Usage example:
//
//	progress := session.Progress{}
//	progress.AddAudit(audit)
//	progress.AddUpdate(update)
//	report := progress.Report(session.Metadata{Runtime: "docker-api"})
//	report.Log(logrus.StandardLogger())
//	os.Exit(report.ExitCode())
//
// The package uses google/uuid for run identifiers and yaml.v3 for YAML output.
package session
