// Package actions provides the two-phase orchestration at the core of container-check.
// It audits container images for packages missing from a baseline and updates the stale ones in place.
//
// Key components:
//   - InspectContainer: Lists the installed packages of one image in an auto-removed container.
//   - Audit: Inspects every image across a bounded pool and diffs the results against the baseline.
//   - UpdateContainer: Runs one pre-clean, update, commit and cleanup transaction.
//   - UpdateStale: Assigns transaction names and updates every stale image across a bounded pool.
//   - RunChecksWithNotifications: Runs audit, update and verification, then reports and notifies.
//   - ValidateParams: Rejects parameters that would fail every transaction.
//
// Usage example:
//
//	audit := actions.Audit(ctx, runtime, images, baseline, auditParams)
//	if audit.Succeeded && len(audit.Stale) > 0 {
//	    result := actions.UpdateStale(ctx, runtime, audit.Stale, updateParams)
//	    logrus.WithField("failed", result.Failed).Info("Update phase finished")
//	}
//
// Workers report failures as values; coordinators wait for every worker before folding results, so a
// single failure never cancels or corrupts the work of its siblings.
package actions
