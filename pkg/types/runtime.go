package types

import "context"

// Mount binds a host path into a transient container.
type Mount struct {
	Source   string // Absolute host path.
	Target   string // Path inside the container.
	ReadOnly bool
}

// RunSpec describes a transient container to create and run to completion.
type RunSpec struct {
	Image       string   // Image to instantiate.
	Command     []string // Command to execute.
	Name        string   // Container name, empty for a runtime-assigned name.
	AutoRemove  bool     // Remove the container once it exits.
	Mounts      []Mount  // Bind mounts.
	NetworkMode string   // Network mode such as "host", empty for the runtime default.
	User        string   // User override such as "root", empty for the image default.
}

// RunResult holds the captured streams and exit status of a finished transient container.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runtime is the container runtime surface the audit and update phases depend on.
//
// Any runtime exposing these operations is substitutable.
type Runtime interface {
	// CreateAndRun creates a container from spec, runs it to completion and captures its output.
	//
	// A non-nil error means the container could not be created, started or waited on; a command that ran
	// and failed is reported through RunResult.ExitCode instead.
	CreateAndRun(ctx context.Context, spec RunSpec) (RunResult, error)

	// Remove deletes a container by name or ID.
	//
	// A missing container is reported with an error satisfying errdefs.IsNotFound.
	Remove(ctx context.Context, name string) error

	// Commit persists the filesystem of the named container as image, annotated with message.
	//
	// Returns the ID of the new image.
	Commit(ctx context.Context, name, image, message string) (string, error)

	// Name identifies the runtime implementation for logging.
	Name() string
}
