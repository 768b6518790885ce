package container

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	cerrdefs "github.com/containerd/errdefs"
	dockerContainerType "github.com/docker/docker/api/types/container"
	dockerClient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

// removeTimeout bounds removals that run on a context detached from the caller's cancellation.
const removeTimeout = 30 * time.Second

// Client is the Docker Engine API implementation of types.Runtime.
type Client struct {
	api Operations
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	// APIVersion forces a Docker API version; empty uses DOCKER_API_VERSION or negotiation.
	APIVersion string
}

// NewClient initializes a Docker API runtime from the environment.
//
// It configures the client using environment variables (e.g., DOCKER_HOST, DOCKER_TLS_VERIFY) and
// validates a forced API version, falling back to autonegotiation if the daemon rejects it.
//
// Parameters:
//   - opts: Options to customize the client.
//
// Returns:
//   - *Client: Initialized runtime.
//   - error: Non-nil if the client cannot be created.
func NewClient(opts ClientOptions) (*Client, error) {
	ctx := context.Background()

	cli, err := dockerClient.NewClientWithOpts(
		dockerClient.FromEnv,
		dockerClient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInitClientFailed, err)
	}

	version := opts.APIVersion
	if version == "" {
		version = strings.Trim(os.Getenv("DOCKER_API_VERSION"), "\"")
	}

	// Apply forced API version if set and valid.
	if version != "" {
		pingCli, err := dockerClient.NewClientWithOpts(
			dockerClient.FromEnv,
			dockerClient.WithHost(cli.DaemonHost()),
			dockerClient.WithVersion(version),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInitClientFailed, err)
		}

		if _, err := pingCli.Ping(ctx); err != nil &&
			strings.Contains(err.Error(), "page not found") {
			logrus.WithFields(logrus.Fields{
				"version":  version,
				"error":    err,
				"endpoint": "/_ping",
			}).Warn("Invalid API version; falling back to autonegotiation")
			cli.NegotiateAPIVersion(ctx)
		} else {
			cli = pingCli
		}
	} else {
		cli.NegotiateAPIVersion(ctx)
	}

	logrus.WithField("client_version", cli.ClientVersion()).Debug("Initialized Docker client")

	return &Client{api: cli}, nil
}

// NewClientWithAPI wraps an existing Docker API client.
//
// Parameters:
//   - api: Docker API operations, usually a *client.Client.
//
// Returns:
//   - *Client: Runtime using api.
func NewClientWithAPI(api Operations) *Client {
	return &Client{api: api}
}

// Name identifies the runtime.
func (c *Client) Name() string {
	return "docker-api"
}

// Version returns the Docker API version in use.
//
// Returns:
//   - string: Docker API version (e.g., "1.44").
func (c *Client) Version() string {
	return strings.Trim(c.api.ClientVersion(), "\"")
}

// CreateAndRun creates a container from spec, runs it to completion and captures its output.
//
// Auto-removal is performed client-side after the output has been read, so that the log streams of short
// lived containers are never lost to a daemon-side removal racing the read. The removal runs on a context
// detached from ctx, so a cancelled run still removes its container.
//
// Parameters:
//   - ctx: Context for the create, start, wait and log calls.
//   - spec: Container to run.
//
// Returns:
//   - types.RunResult: Exit status and captured streams; ExitCode is -1 if the command never finished.
//   - error: Non-nil if the container could not be created, started, waited on or read.
func (c *Client) CreateAndRun(ctx context.Context, spec types.RunSpec) (types.RunResult, error) {
	result := types.RunResult{ExitCode: -1}

	if len(spec.Command) == 0 {
		return result, errEmptyCommand
	}

	clog := logrus.WithFields(logrus.Fields{
		"image":       spec.Image,
		"name":        spec.Name,
		"auto_remove": spec.AutoRemove,
	})

	config := &dockerContainerType.Config{
		Image:        spec.Image,
		Cmd:          spec.Command,
		User:         spec.User,
		AttachStdout: true,
		AttachStderr: true,
	}
	hostConfig := &dockerContainerType.HostConfig{
		NetworkMode: dockerContainerType.NetworkMode(spec.NetworkMode),
		Binds:       binds(spec.Mounts),
	}

	clog.WithField("command", strings.Join(spec.Command, " ")).Debug("Creating transient container")

	created, err := c.api.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	if err != nil {
		clog.WithError(err).Debug("Failed to create transient container")

		return result, fmt.Errorf("%w: %w", errCreateContainerFailed, err)
	}

	for _, warning := range created.Warnings {
		clog.WithField("id", shortID(created.ID)).Warn(warning)
	}

	clog = clog.WithField("id", shortID(created.ID))

	if spec.AutoRemove {
		defer c.removeDetached(ctx, created.ID, clog)
	}

	if err := c.api.ContainerStart(ctx, created.ID, dockerContainerType.StartOptions{}); err != nil {
		clog.WithError(err).Debug("Failed to start transient container")

		return result, fmt.Errorf("%w: %w", errStartContainerFailed, err)
	}

	exitCode, err := c.waitForExit(ctx, created.ID)
	if err != nil {
		clog.WithError(err).Debug("Failed to wait for transient container")

		return result, err
	}

	result.ExitCode = exitCode

	result.Stdout, result.Stderr, err = c.captureOutput(ctx, created.ID)
	if err != nil {
		clog.WithError(err).Debug("Failed to capture transient container output")

		return result, err
	}

	clog.WithField("exit_code", exitCode).Debug("Transient container finished")

	return result, nil
}

// Remove force-removes a container by name or ID.
//
// Parameters:
//   - ctx: Context for the API call.
//   - name: Container name or ID.
//
// Returns:
//   - error: Non-nil if removal fails; a missing container satisfies errdefs.IsNotFound.
func (c *Client) Remove(ctx context.Context, name string) error {
	err := c.api.ContainerRemove(ctx, name, dockerContainerType.RemoveOptions{Force: true})
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			logrus.WithField("name", name).Debug("Container not found, nothing to remove")
		}

		return fmt.Errorf("%w: %w", errRemoveContainerFailed, err)
	}

	logrus.WithField("name", name).Debug("Removed container")

	return nil
}

// Commit persists the filesystem of a container as a new version of image.
//
// Parameters:
//   - ctx: Context for the API call.
//   - name: Container name or ID to commit.
//   - image: Target image reference, re-tagged to point at the new image.
//   - message: Commit comment.
//
// Returns:
//   - string: ID of the new image.
//   - error: Non-nil if the reference is unusable or the commit fails.
func (c *Client) Commit(ctx context.Context, name, image, message string) (string, error) {
	ref, err := CommitReference(image)
	if err != nil {
		return "", err
	}

	response, err := c.api.ContainerCommit(ctx, name, dockerContainerType.CommitOptions{
		Reference: ref,
		Comment:   message,
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"name":  name,
			"image": ref,
		}).Debug("Failed to commit container")

		return "", fmt.Errorf("%w: %w", errCommitContainerFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"name":     name,
		"image":    ref,
		"image_id": shortID(response.ID),
	}).Debug("Committed container")

	return response.ID, nil
}

// waitForExit blocks until the container is no longer running.
//
// Parameters:
//   - ctx: Context for the wait call.
//   - containerID: ID of a started container.
//
// Returns:
//   - int: Exit status of the container's main process.
//   - error: Non-nil if waiting fails.
func (c *Client) waitForExit(ctx context.Context, containerID string) (int, error) {
	waitCh, errCh := c.api.ContainerWait(ctx, containerID, dockerContainerType.WaitConditionNotRunning)

	select {
	case response := <-waitCh:
		if response.Error != nil && response.Error.Message != "" {
			return -1, fmt.Errorf("%w: %s", errWaitContainerFailed, response.Error.Message)
		}

		return int(response.StatusCode), nil
	case err := <-errCh:
		return -1, fmt.Errorf("%w: %w", errWaitContainerFailed, err)
	}
}

// captureOutput reads the demultiplexed stdout and stderr streams of an exited container.
//
// Parameters:
//   - ctx: Context for the logs call.
//   - containerID: ID of the container.
//
// Returns:
//   - string: Captured stdout.
//   - string: Captured stderr.
//   - error: Non-nil if the streams cannot be read.
func (c *Client) captureOutput(ctx context.Context, containerID string) (string, string, error) {
	reader, err := c.api.ContainerLogs(ctx, containerID, dockerContainerType.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", errReadLogsFailed, err)
	}

	defer reader.Close()

	var stdout, stderr bytes.Buffer

	if _, err := stdcopy.StdCopy(&stdout, &stderr, reader); err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("%w: %w", errReadLogsFailed, err)
	}

	return stdout.String(), stderr.String(), nil
}

// removeDetached removes an auto-remove container on a context that survives cancellation of ctx.
//
// Failures are logged, never returned.
func (c *Client) removeDetached(ctx context.Context, containerID string, clog *logrus.Entry) {
	removeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), removeTimeout)
	defer cancel()

	err := c.api.ContainerRemove(removeCtx, containerID, dockerContainerType.RemoveOptions{Force: true})
	if err != nil && !cerrdefs.IsNotFound(err) {
		clog.WithError(err).Warn("Failed to remove transient container")

		return
	}

	clog.Debug("Removed transient container")
}

// binds converts mounts into Docker bind specifications.
func binds(mounts []types.Mount) []string {
	if len(mounts) == 0 {
		return nil
	}

	result := make([]string, 0, len(mounts))
	for _, mount := range mounts {
		result = append(result, bindSpec(mount))
	}

	return result
}

// bindSpec renders a mount as "source:target[:ro]".
func bindSpec(mount types.Mount) string {
	spec := mount.Source + ":" + mount.Target
	if mount.ReadOnly {
		spec += ":ro"
	}

	return spec
}

// shortID truncates a container or image ID for logging.
func shortID(id string) string {
	const shortLength = 12

	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > shortLength {
		return id[:shortLength]
	}

	return id
}
