// Package container provides the container runtimes container-check drives.
// It implements types.Runtime on top of the Docker Engine API and on top of a docker-compatible
// command-line binary, exposing the create-and-run, remove and commit operations used by the audit and
// update phases.
//
// Key components:
//   - Client: Docker Engine API runtime built from DOCKER_HOST and related environment variables.
//   - CLI: Runtime that invokes a docker-compatible binary such as docker or podman.
//   - Operations: The subset of the Docker API client the Client relies on.
//
// Usage example:
//
//	cli, err := container.NewClient(container.ClientOptions{})
//	if err != nil {
//	    logrus.WithError(err).Fatal("Failed to initialize Docker client")
//	}
//	result, err := cli.CreateAndRun(ctx, types.RunSpec{
//	    Image:      "registry.example.com/app:1.2",
//	    Command:    []string{"rpm", "-qa"},
//	    AutoRemove: true,
//	    User:       "root",
//	})
//
// Both runtimes report a missing container from Remove with an error satisfying errdefs.IsNotFound,
// so callers can classify it without knowing which runtime is in use.
package container
