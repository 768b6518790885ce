package actions

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/internal/pool"
	"github.com/nicholas-fedor/container-check/pkg/baseline"
	"github.com/nicholas-fedor/container-check/pkg/session"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// RunParams configures a complete run.
type RunParams struct {
	Audit  types.AuditParams  // Audit phase parameters, reused for verification.
	Update types.UpdateParams // Update phase parameters.
	// UpdateRequested enables the update phase.
	UpdateRequested bool
	// Verify audits updated images again after the update phase.
	Verify bool
	// RuntimeName is recorded in the report.
	RuntimeName string
}

// RunChecksWithNotifications runs the audit phase, the update phase and verification, then logs the
// outcome and sends it to notifier.
//
// The update phase only starts once every audit worker has returned, and is skipped when an inspection
// failed because a partial view of the fleet must not be acted upon. Verification re-audits only the
// images whose update was committed.
//
// Parameters:
//   - ctx: Context for the runtime calls.
//   - runtime: Container runtime.
//   - notifier: Notification sink, may be nil.
//   - images: Container image identifiers.
//   - baselineSet: Known-good package set.
//   - params: Run parameters.
//
// Returns:
//   - *session.Report: Report of the run.
func RunChecksWithNotifications(
	ctx context.Context,
	runtime types.Runtime,
	notifier types.Notifier,
	images []string,
	baselineSet types.BaselineSet,
	params RunParams,
) *session.Report {
	log := loggerOf(params.Audit.Logger)
	started := time.Now()
	progress := session.Progress{}

	audit := Audit(ctx, runtime, images, baselineSet, params.Audit)
	progress.AddAudit(audit)

	if params.UpdateRequested {
		switch {
		case !audit.Succeeded:
			log.WithField("failed", len(audit.Failed)).
				Warn("Skipping update phase because package inspection failed")
		case len(audit.Stale) == 0:
			log.Info("No stale packages found, nothing to update")
		default:
			update := UpdateStale(ctx, runtime, audit.Stale, params.Update)
			progress.AddUpdate(update)

			if updated := update.Updated(); params.Verify && len(updated) > 0 {
				log.WithField("containers", len(updated)).Info("Verifying updated containers")

				verification := Audit(ctx, runtime, updated, baselineSet, params.Audit)
				progress.AddVerification(verification)
			}
		}
	}

	report := progress.Report(session.Metadata{
		StartedAt:           started,
		Runtime:             params.RuntimeName,
		Workers:             pool.Size(params.Audit.Workers, 0),
		BaselineSize:        baselineSet.Len(),
		BaselineFingerprint: baseline.Fingerprint(baselineSet),
		UpdateRequested:     params.UpdateRequested,
		VerifyRequested:     params.Verify,
	})

	report.Log(log)

	if notifier == nil {
		log.Debug("No notifier configured, skipping notification")

		return report
	}

	if err := notifier.Send(report); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"run_id":   report.RunID(),
			"services": notifier.GetNames(),
		}).Warn("Failed to send run notification")
	}

	return report
}
