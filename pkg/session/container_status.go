package session

import (
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// State enum values.
const (
	UnknownState      State = iota // Uninitialized state.
	FailedState                    // Package inspection failed.
	FreshState                     // No stale packages.
	StaleState                     // Stale packages found, not updated.
	UpdatedState                   // Update transaction committed.
	UpdateFailedState              // Update transaction failed.
)

// State indicates what the current state is of the container.
type State int

// String returns the state name used in reports.
func (s State) String() string {
	switch s {
	case UnknownState:
		return "unknown"
	case FailedState:
		return "failed"
	case FreshState:
		return "fresh"
	case StaleState:
		return "stale"
	case UpdatedState:
		return "updated"
	case UpdateFailedState:
		return "update-failed"
	default:
		return "unknown"
	}
}

// ContainerStatus holds a container's state during a run.
//
//nolint:errname // ContainerStatus is not an error type, it contains an error field.
type ContainerStatus struct {
	container      string            // Container image identifier.
	state          State             // Current state.
	stale          []types.PackageID // Stale packages found by the audit.
	transaction    string            // Update transaction name.
	failure        types.FailureKind // Failed update step.
	imageID        string            // Committed image ID.
	containerError error             // Error encountered, if any.
	verified       bool              // Whether a verification audit ran.
	verifyError    error             // Error from the verification audit.
	remaining      []types.PackageID // Stale packages left after the update.
}

// Name returns the container image identifier.
func (u *ContainerStatus) Name() string {
	return u.container
}

// State returns the current state.
func (u *ContainerStatus) State() State {
	return u.state
}

// StalePackages returns the stale packages found by the audit.
func (u *ContainerStatus) StalePackages() []types.PackageID {
	return u.stale
}

// Transaction returns the update transaction name, empty if no update ran.
func (u *ContainerStatus) Transaction() string {
	return u.transaction
}

// Failure returns which update step failed.
func (u *ContainerStatus) Failure() types.FailureKind {
	return u.failure
}

// ImageID returns the ID of the committed image, empty unless updated.
func (u *ContainerStatus) ImageID() string {
	return u.imageID
}

// Error returns the inspection or update error, if any.
//
// Returns:
//   - string: Error message or empty if none.
func (u *ContainerStatus) Error() string {
	if u.containerError == nil {
		return ""
	}

	return u.containerError.Error()
}

// Verified reports whether the updated image was audited again.
func (u *ContainerStatus) Verified() bool {
	return u.verified
}

// VerifyError returns the error of the verification audit, if any.
func (u *ContainerStatus) VerifyError() string {
	if u.verifyError == nil {
		return ""
	}

	return u.verifyError.Error()
}

// RemainingPackages returns the stale packages the verification audit still found.
func (u *ContainerStatus) RemainingPackages() []types.PackageID {
	return u.remaining
}

// Healthy reports whether the container leaves the run in an acceptable state.
//
// Fresh containers are healthy, as are updated ones whose verification, if any, came back clean.
//
// Returns:
//   - bool: False for failed inspections, unhandled stale packages and failed or unverified updates.
func (u *ContainerStatus) Healthy() bool {
	switch u.state {
	case FreshState:
		return true
	case UpdatedState:
		return !u.verified || (u.verifyError == nil && len(u.remaining) == 0)
	case UnknownState, FailedState, StaleState, UpdateFailedState:
		return false
	default:
		return false
	}
}
