package types

// FailureKind classifies why an update transaction did not take effect.
type FailureKind int

// FailureKind values.
const (
	FailureNone       FailureKind = iota // Update and commit succeeded.
	FailureUpdateStep                    // Update command could not run or exited non-zero; image untouched.
	FailureCommit                        // Update ran but committing the new image failed.
)

// String returns a human-readable name for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureUpdateStep:
		return "update"
	case FailureCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// UpdateOutcome is the result of one update transaction.
type UpdateOutcome struct {
	Container   string      // Container image identifier.
	Transaction string      // Name of the transient update container.
	Succeeded   bool        // True only when update and commit both succeeded.
	Failure     FailureKind // Which step failed, FailureNone on success.
	ImageID     string      // ID of the committed image on success.
	Err         error       // Underlying error for failed transactions.
}
