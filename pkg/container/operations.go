package container

import (
	"context"
	"io"

	dockerContainerType "github.com/docker/docker/api/types/container"
	dockerNetworkType "github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Operations defines the minimal interface of the Docker API client used by Client.
//
// *client.Client from github.com/docker/docker/client satisfies it.
type Operations interface {
	ContainerCreate(
		ctx context.Context,
		config *dockerContainerType.Config,
		hostConfig *dockerContainerType.HostConfig,
		networkingConfig *dockerNetworkType.NetworkingConfig,
		platform *ocispec.Platform,
		containerName string,
	) (dockerContainerType.CreateResponse, error)
	ContainerStart(
		ctx context.Context,
		containerID string,
		options dockerContainerType.StartOptions,
	) error
	ContainerWait(
		ctx context.Context,
		containerID string,
		condition dockerContainerType.WaitCondition,
	) (<-chan dockerContainerType.WaitResponse, <-chan error)
	ContainerLogs(
		ctx context.Context,
		containerID string,
		options dockerContainerType.LogsOptions,
	) (io.ReadCloser, error)
	ContainerRemove(
		ctx context.Context,
		containerID string,
		options dockerContainerType.RemoveOptions,
	) error
	ContainerCommit(
		ctx context.Context,
		containerID string,
		options dockerContainerType.CommitOptions,
	) (dockerContainerType.CommitResponse, error)
	ClientVersion() string
}
