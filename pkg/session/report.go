package session

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

// Report is the immutable result of a run. It implements types.Summary.
type Report struct {
	meta     Metadata
	statuses []*ContainerStatus
}

// Metadata returns the run metadata.
func (r *Report) Metadata() Metadata {
	return r.meta
}

// RunID returns the unique run identifier.
func (r *Report) RunID() string {
	return r.meta.RunID
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	if r.meta.StartedAt.IsZero() {
		return 0
	}

	return r.meta.FinishedAt.Sub(r.meta.StartedAt)
}

// All returns every container status sorted by identifier.
func (r *Report) All() []*ContainerStatus {
	return r.statuses
}

// Audited returns the number of inspected containers.
func (r *Report) Audited() int {
	return len(r.statuses)
}

// InspectionFailures returns the containers whose inspection failed.
func (r *Report) InspectionFailures() []string {
	return r.namesIn(FailedState)
}

// StaleContainers returns the stale packages found by the audit per container, whether or not they
// were updated afterwards.
//
// Returns:
//   - map[string][]types.PackageID: Sparse map of container identifier to stale packages.
func (r *Report) StaleContainers() map[string][]types.PackageID {
	stale := map[string][]types.PackageID{}

	for _, status := range r.statuses {
		if len(status.stale) > 0 {
			stale[status.container] = status.stale
		}
	}

	return stale
}

// StaleRemaining returns the containers still stale at the end of the run: stale ones that were not
// updated, failed updates, and updates whose verification found stale packages.
func (r *Report) StaleRemaining() []string {
	names := []string{}

	for _, status := range r.statuses {
		switch status.state {
		case StaleState, UpdateFailedState:
			names = append(names, status.container)
		case UpdatedState:
			if len(status.remaining) > 0 {
				names = append(names, status.container)
			}
		case UnknownState, FailedState, FreshState:
		}
	}

	return names
}

// UpdatedContainers returns the containers whose update was committed.
func (r *Report) UpdatedContainers() []string {
	return r.namesIn(UpdatedState)
}

// FailedUpdates returns the containers whose update transaction failed.
func (r *Report) FailedUpdates() []string {
	return r.namesIn(UpdateFailedState)
}

// Succeeded reports whether every container ended the run healthy.
//
// Returns:
//   - bool: False if any inspection failed, any stale container was left untouched, any update failed
//     or any verification found stale packages.
func (r *Report) Succeeded() bool {
	for _, status := range r.statuses {
		if !status.Healthy() {
			return false
		}
	}

	return true
}

// ExitCode maps the run outcome to a process exit status.
//
// Returns:
//   - int: 0 on success, 1 otherwise.
func (r *Report) ExitCode() int {
	if r.Succeeded() {
		return 0
	}

	return 1
}

// Log writes the human-readable outcome to logger.
//
// Each stale container gets an info line followed by one line per stale package; failed inspections
// and failed updates get an error line each. Containers still stale at the end of the run are listed
// in a single warning before the closing summary.
//
// Parameters:
//   - logger: Destination logger, the standard logger when nil.
func (r *Report) Log(logger logrus.FieldLogger) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	for _, status := range r.statuses {
		clog := logger.WithField("container", status.container)

		if len(status.stale) > 0 {
			clog.WithField("packages", len(status.stale)).Info("Container needs updating")

			for _, pkg := range status.stale {
				clog.WithField("package", string(pkg)).Info("Stale package")
			}
		}

		switch status.state {
		case FailedState:
			clog.WithField("error", status.Error()).Error("Package inspection failed")
		case UpdateFailedState:
			clog.WithFields(logrus.Fields{
				"transaction": status.transaction,
				"step":        status.failure.String(),
				"error":       status.Error(),
			}).Error("Container update failed")
		case UpdatedState:
			clog.WithField("image_id", status.imageID).Info("Container updated")

			if status.verified && (status.verifyError != nil || len(status.remaining) > 0) {
				clog.WithFields(logrus.Fields{
					"remaining": len(status.remaining),
					"error":     status.VerifyError(),
				}).Error("Updated container failed verification")
			}
		case UnknownState, FreshState, StaleState:
		}
	}

	remaining := r.StaleRemaining()
	if len(remaining) > 0 {
		logger.WithField("containers", strings.Join(remaining, ", ")).Warn("Stale containers remain")
	}

	logger.WithFields(logrus.Fields{
		"run_id":    r.meta.RunID,
		"audited":   r.Audited(),
		"stale":     len(r.StaleContainers()),
		"remaining": len(remaining),
		"updated":   len(r.UpdatedContainers()),
		"failed":    len(r.InspectionFailures()) + len(r.FailedUpdates()),
		"succeeded": r.Succeeded(),
	}).Info("Run finished")
}

// namesIn returns the identifiers of containers in state.
func (r *Report) namesIn(state State) []string {
	names := []string{}

	for _, status := range r.statuses {
		if status.state == state {
			names = append(names, status.container)
		}
	}

	return names
}
