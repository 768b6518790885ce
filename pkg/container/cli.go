package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	cerrdefs "github.com/containerd/errdefs"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

// noSuchContainer is the lower-cased fragment docker and podman print when removing a missing container.
const noSuchContainer = "no such container"

// CLI is a types.Runtime that invokes a docker-compatible command-line binary.
type CLI struct {
	binary string
}

// NewCLI creates a CLI runtime.
//
// Parameters:
//   - binary: Name or path of the runtime binary, "docker" if empty.
//
// Returns:
//   - *CLI: Runtime invoking binary.
func NewCLI(binary string) *CLI {
	if binary == "" {
		binary = "docker"
	}

	return &CLI{binary: binary}
}

// Name identifies the runtime by its binary.
func (c *CLI) Name() string {
	return filepath.Base(c.binary) + "-cli"
}

// CreateAndRun runs "<binary> run" for spec and captures its output.
//
// Parameters:
//   - ctx: Context bounding the process.
//   - spec: Container to run.
//
// Returns:
//   - types.RunResult: Exit status and captured streams.
//   - error: Non-nil if the binary could not be executed.
func (c *CLI) CreateAndRun(ctx context.Context, spec types.RunSpec) (types.RunResult, error) {
	if len(spec.Command) == 0 {
		return types.RunResult{ExitCode: -1}, errEmptyCommand
	}

	return c.run(ctx, RunArgs(spec)...)
}

// Remove runs "<binary> rm --force <name>".
//
// Parameters:
//   - ctx: Context bounding the process.
//   - name: Container name or ID.
//
// Returns:
//   - error: Non-nil if removal fails; a missing container satisfies errdefs.IsNotFound.
func (c *CLI) Remove(ctx context.Context, name string) error {
	result, err := c.run(ctx, "rm", "--force", name)
	if err != nil {
		return fmt.Errorf("%w: %w", errRemoveContainerFailed, err)
	}

	if result.ExitCode != 0 {
		stderr := strings.TrimSpace(result.Stderr)
		if strings.Contains(strings.ToLower(stderr), noSuchContainer) {
			return fmt.Errorf("%w: %w: %s", errRemoveContainerFailed, cerrdefs.ErrNotFound, stderr)
		}

		return fmt.Errorf("%w: exit code %d: %s", errRemoveContainerFailed, result.ExitCode, stderr)
	}

	return nil
}

// Commit runs "<binary> commit -m <message> <name> <image>".
//
// Parameters:
//   - ctx: Context bounding the process.
//   - name: Container name or ID to commit.
//   - image: Target image reference.
//   - message: Commit comment.
//
// Returns:
//   - string: ID of the new image as printed by the binary.
//   - error: Non-nil if the reference is unusable or the commit fails.
func (c *CLI) Commit(ctx context.Context, name, image, message string) (string, error) {
	ref, err := CommitReference(image)
	if err != nil {
		return "", err
	}

	result, err := c.run(ctx, "commit", "-m", message, name, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errCommitContainerFailed, err)
	}

	if result.ExitCode != 0 {
		return "", fmt.Errorf(
			"%w: exit code %d: %s",
			errCommitContainerFailed,
			result.ExitCode,
			strings.TrimSpace(result.Stderr),
		)
	}

	return strings.TrimSpace(result.Stdout), nil
}

// RunArgs builds the "run" argument list for spec.
//
// Parameters:
//   - spec: Container to run.
//
// Returns:
//   - []string: Arguments following the binary name.
func RunArgs(spec types.RunSpec) []string {
	args := []string{"run"}

	if spec.User != "" {
		args = append(args, "--user", spec.User)
	}

	if spec.AutoRemove {
		args = append(args, "--rm")
	}

	if spec.NetworkMode != "" {
		args = append(args, "--net", spec.NetworkMode)
	}

	for _, mount := range spec.Mounts {
		args = append(args, "--volume", bindSpec(mount))
	}

	if spec.Name != "" {
		args = append(args, "--name", spec.Name)
	}

	args = append(args, spec.Image)

	return append(args, spec.Command...)
}

// run executes the binary and captures its streams.
//
// A non-zero exit is reported through the result; only failures to execute the binary are errors.
func (c *CLI) run(ctx context.Context, args ...string) (types.RunResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logrus.WithField("command", c.binary+" "+strings.Join(args, " ")).Debug("Running runtime command")

	err := cmd.Run()
	result := types.RunResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			result.ExitCode = exitErr.ExitCode()

			return result, nil
		}

		result.ExitCode = -1

		return result, fmt.Errorf("%w: %w", errExecBinaryFailed, err)
	}

	return result, nil
}
