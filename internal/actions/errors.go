package actions

import "errors"

// Errors for the audit phase.
var (
	// errInspectionFailed indicates the package list of a container image could not be obtained.
	errInspectionFailed = errors.New("failed to list installed packages")
)

// Errors for the update phase.
var (
	// errUpdateStepFailed indicates the update command could not run or exited non-zero.
	errUpdateStepFailed = errors.New("update command failed")
	// errCommitFailed indicates the updated container could not be committed over its image.
	errCommitFailed = errors.New("failed to commit updated container")
	// errCleanupFailed indicates a transaction container could not be removed. It is logged, never returned.
	errCleanupFailed = errors.New("failed to remove transaction container")
)

// Errors for parameter validation in validate.go.
var (
	// errMissingCommand indicates an empty list or update command.
	errMissingCommand = errors.New("command must not be empty")
	// errInvalidTransactionPrefix indicates a prefix that cannot start a container name.
	errInvalidTransactionPrefix = errors.New("invalid transaction prefix")
	// errRelativeMount indicates a bind mount with a relative source or target.
	errRelativeMount = errors.New("mount paths must be absolute")
)
