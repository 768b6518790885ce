// Package types defines the core value types and interfaces shared by container-check.
// It provides the package and container records produced by the audit phase, the outcomes produced by the
// update phase, and the runtime abstraction both phases drive.
//
// Key components:
//   - PackageID and BaselineSet: Opaque package identifiers and the read-only baseline they are diffed against.
//   - ContainerRecord and StaleReport: Per-container audit results and the sparse stale-package map.
//   - UpdateOutcome and FailureKind: Per-container results of an update transaction.
//   - Runtime, RunSpec and RunResult: The four-operation container runtime surface.
//   - AuditParams and UpdateParams: Parameters for the audit and update coordinators.
//   - Notifier: Interface for sending a run summary.
//
// Usage example:
//
//	baseline := types.NewBaselineSet([]types.PackageID{"foo-1.0-1.x86_64"})
//	if !baseline.Contains("bar-2.0-1.x86_64") {
//	    // stale
//	}
//
// The package has no behavior of its own beyond small helpers and is imported by actions,
// container, session, metrics and notifications.
package types
