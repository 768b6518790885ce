package session

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

// Progress tracks container statuses during a run.
type Progress map[string]*ContainerStatus

// AddAudit records the outcome of the audit phase.
//
// Parameters:
//   - result: Folded audit result.
func (m Progress) AddAudit(result types.AuditResult) {
	for name, record := range result.Records {
		status := &ContainerStatus{container: name}

		switch {
		case !record.Succeeded:
			status.state = FailedState
			status.containerError = record.Err
		case len(result.Stale[name]) > 0:
			status.state = StaleState
			status.stale = result.Stale[name]
		default:
			status.state = FreshState
		}

		m[name] = status

		logrus.WithFields(logrus.Fields{
			"container": name,
			"state":     status.state.String(),
		}).Debug("Recorded audit status")
	}
}

// AddUpdate records the outcome of the update phase.
//
// Parameters:
//   - result: Folded update result.
func (m Progress) AddUpdate(result types.UpdateResult) {
	for name, outcome := range result.Outcomes {
		status, found := m[name]
		if !found {
			status = &ContainerStatus{container: name}
			m[name] = status
		}

		status.transaction = outcome.Transaction
		status.failure = outcome.Failure

		if outcome.Succeeded {
			status.state = UpdatedState
			status.imageID = outcome.ImageID
		} else {
			status.state = UpdateFailedState
			status.containerError = outcome.Err
		}

		logrus.WithFields(logrus.Fields{
			"container": name,
			"state":     status.state.String(),
		}).Debug("Recorded update status")
	}
}

// AddVerification records the audit of updated images.
//
// Parameters:
//   - result: Folded audit result covering the updated containers.
func (m Progress) AddVerification(result types.AuditResult) {
	for name, record := range result.Records {
		status, found := m[name]
		if !found {
			continue
		}

		status.verified = true
		status.verifyError = record.Err
		status.remaining = result.Stale[name]

		logrus.WithFields(logrus.Fields{
			"container": name,
			"remaining": len(status.remaining),
		}).Debug("Recorded verification status")
	}
}

// Metadata describes the run a report belongs to.
type Metadata struct {
	RunID               string    // Unique run identifier, generated when empty.
	StartedAt           time.Time // Start of the run.
	FinishedAt          time.Time // End of the run, now when zero.
	Runtime             string    // Name of the container runtime.
	Workers             int       // Pool size.
	BaselineSize        int       // Number of baseline packages.
	BaselineFingerprint string    // Fingerprint of the baseline.
	UpdateRequested     bool      // Whether the update phase was requested.
	VerifyRequested     bool      // Whether verification was requested.
}

// Report freezes the progress into a report.
//
// Parameters:
//   - meta: Run metadata.
//
// Returns:
//   - *Report: Report with statuses sorted by container identifier.
func (m Progress) Report(meta Metadata) *Report {
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}

	if meta.FinishedAt.IsZero() {
		meta.FinishedAt = time.Now()
	}

	statuses := make([]*ContainerStatus, 0, len(m))
	for _, status := range m {
		statuses = append(statuses, status)
	}

	slices.SortFunc(statuses, func(a, b *ContainerStatus) int {
		return strings.Compare(a.container, b.container)
	})

	return &Report{meta: meta, statuses: statuses}
}
