package container

import (
	"errors"
)

// Errors for client initialization in client.go.
var (
	// errInitClientFailed indicates the Docker API client could not be created from the environment.
	errInitClientFailed = errors.New("failed to initialize docker client")
)

// Errors for transient container operations in client.go and cli.go.
var (
	// errCreateContainerFailed indicates a failure to create a new container.
	errCreateContainerFailed = errors.New("failed to create container")
	// errStartContainerFailed indicates a failure to start a newly created container.
	errStartContainerFailed = errors.New("failed to start container")
	// errWaitContainerFailed indicates a failure while waiting for a container to exit.
	errWaitContainerFailed = errors.New("failed to wait for container")
	// errReadLogsFailed indicates a failure to read the output streams of a container.
	errReadLogsFailed = errors.New("failed to read container output")
	// errRemoveContainerFailed indicates a failure to remove a container from the host.
	errRemoveContainerFailed = errors.New("failed to remove container")
	// errCommitContainerFailed indicates a failure to commit a container as a new image.
	errCommitContainerFailed = errors.New("failed to commit container")
	// errPinnedImage indicates an attempt to commit onto an immutable (digest-pinned) image reference.
	errPinnedImage = errors.New("image is pinned by digest and cannot be re-tagged")
	// errInvalidImageReference indicates an image reference that cannot be parsed.
	errInvalidImageReference = errors.New("invalid image reference")
	// errEmptyCommand indicates a run spec without a command.
	errEmptyCommand = errors.New("no command specified")
	// errExecBinaryFailed indicates the runtime binary could not be executed at all.
	errExecBinaryFailed = errors.New("failed to execute runtime binary")
)
