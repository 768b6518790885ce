package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	cerrdefs "github.com/containerd/errdefs"

	"github.com/nicholas-fedor/container-check/internal/pool"
	"github.com/nicholas-fedor/container-check/internal/util"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// cleanupTimeout bounds the removal of a transaction container after the run context is gone.
const cleanupTimeout = 30 * time.Second

// UpdateContainer runs one update transaction for a stale container image.
//
// The transaction removes any leftover container holding the transaction name, runs the update command in
// a new container of that name, commits the result over the original image and finally removes the
// container. The final removal happens on every path and on a context detached from ctx, so a cancelled
// or timed out run still releases the name. A failed update is never committed.
//
// Parameters:
//   - ctx: Context for the runtime calls.
//   - runtime: Container runtime.
//   - task: Container and transaction name.
//   - params: Update parameters.
//
// Returns:
//   - types.UpdateOutcome: Success, or which step failed and why.
func UpdateContainer(
	ctx context.Context,
	runtime types.Runtime,
	task types.UpdateTask,
	params types.UpdateParams,
) types.UpdateOutcome {
	clog := loggerOf(params.Logger).WithFields(logrus.Fields{
		"container":   task.Container,
		"transaction": task.Transaction,
	})
	outcome := types.UpdateOutcome{
		Container:   task.Container,
		Transaction: task.Transaction,
	}

	runCtx, cancel := withTimeout(ctx, params.Timeout)
	defer cancel()

	preClean(runCtx, runtime, task.Transaction, clog)

	defer release(ctx, runtime, task.Transaction, clog)

	clog.WithField("command", strings.Join(params.UpdateCommand, " ")).Info("Updating container packages")

	result, err := runtime.CreateAndRun(runCtx, types.RunSpec{
		Image:       task.Container,
		Command:     params.UpdateCommand,
		Name:        task.Transaction,
		AutoRemove:  false,
		Mounts:      params.Mounts,
		NetworkMode: params.NetworkMode,
		User:        params.User,
	})

	switch {
	case err != nil:
		outcome.Failure = types.FailureUpdateStep
		outcome.Err = fmt.Errorf("%w: %w", errUpdateStepFailed, err)

		clog.WithError(err).WithField("stderr", strings.TrimSpace(result.Stderr)).
			Error("Failed to run update command")

		return outcome
	case result.ExitCode != 0:
		outcome.Failure = types.FailureUpdateStep
		outcome.Err = fmt.Errorf("%w: exit code %d", errUpdateStepFailed, result.ExitCode)

		clog.WithFields(logrus.Fields{
			"exit_code": result.ExitCode,
			"stderr":    strings.TrimSpace(result.Stderr),
		}).Error("Update command failed")

		return outcome
	}

	imageID, err := runtime.Commit(runCtx, task.Transaction, task.Container, params.CommitMessage)
	if err != nil {
		outcome.Failure = types.FailureCommit
		outcome.Err = fmt.Errorf("%w: %w", errCommitFailed, err)

		clog.WithError(err).Error("Failed to commit updated container")

		return outcome
	}

	outcome.Succeeded = true
	outcome.ImageID = imageID

	clog.WithField("image_id", imageID).Info("Committed updated container")

	return outcome
}

// UpdateStale updates every container in the stale report.
//
// Transaction names are assigned from a counter over the containers in sorted order, so the same report
// always produces the same names and no two concurrent transactions share one.
//
// Parameters:
//   - ctx: Context for the runtime calls.
//   - runtime: Container runtime.
//   - stale: Stale report from the audit phase.
//   - params: Update parameters.
//
// Returns:
//   - types.UpdateResult: Outcome per container; Succeeded only if every transaction succeeded.
func UpdateStale(
	ctx context.Context,
	runtime types.Runtime,
	stale types.StaleReport,
	params types.UpdateParams,
) types.UpdateResult {
	log := loggerOf(params.Logger)
	start := time.Now()
	tasks := Transactions(stale.Containers(), params.TransactionPrefix)

	log.WithFields(logrus.Fields{
		"containers": len(tasks),
		"workers":    pool.Size(params.Workers, len(tasks)),
	}).Info("Starting update phase")

	outcomes := pool.Map(ctx, params.Workers, tasks, func(ctx context.Context, task types.UpdateTask) types.UpdateOutcome {
		return UpdateContainer(ctx, runtime, task, params)
	})

	result := types.UpdateResult{
		Outcomes:  make(map[string]types.UpdateOutcome, len(outcomes)),
		Failed:    []string{},
		Succeeded: true,
	}

	for _, outcome := range outcomes {
		result.Outcomes[outcome.Container] = outcome

		if !outcome.Succeeded {
			result.Failed = append(result.Failed, outcome.Container)
			result.Succeeded = false

			log.WithFields(logrus.Fields{
				"container":   outcome.Container,
				"transaction": outcome.Transaction,
				"step":        outcome.Failure.String(),
			}).WithError(outcome.Err).Error("Update transaction failed")
		}
	}

	log.WithFields(logrus.Fields{
		"updated":  len(outcomes) - len(result.Failed),
		"failed":   len(result.Failed),
		"duration": util.FormatDuration(time.Since(start)),
	}).Info("Update phase finished")

	return result
}

// Transactions pairs containers with transaction names "<prefix><n>", n counting from zero.
//
// Parameters:
//   - containers: Container identifiers in the order names should be assigned.
//   - prefix: Transaction name prefix.
//
// Returns:
//   - []types.UpdateTask: One task per container.
func Transactions(containers []string, prefix string) []types.UpdateTask {
	tasks := make([]types.UpdateTask, 0, len(containers))
	for n, container := range containers {
		tasks = append(tasks, types.UpdateTask{
			Container:   container,
			Transaction: prefix + strconv.Itoa(n),
		})
	}

	return tasks
}

// preClean removes a leftover container holding the transaction name.
//
// A missing container is the normal case. Other failures are logged and left for the create call to
// surface.
func preClean(ctx context.Context, runtime types.Runtime, name string, clog logrus.FieldLogger) {
	err := runtime.Remove(ctx, name)

	switch {
	case err == nil:
		clog.Info("Removed leftover transaction container")
	case cerrdefs.IsNotFound(err):
		clog.Debug("No leftover transaction container")
	default:
		clog.WithError(err).Warn("Failed to remove leftover transaction container")
	}
}

// release removes the transaction container on a context detached from ctx. Failures are logged only.
func release(ctx context.Context, runtime types.Runtime, name string, clog logrus.FieldLogger) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	err := runtime.Remove(cleanupCtx, name)

	switch {
	case err == nil:
		clog.Debug("Removed transaction container")
	case cerrdefs.IsNotFound(err):
		clog.Debug("Transaction container already gone")
	default:
		clog.WithError(fmt.Errorf("%w: %w", errCleanupFailed, err)).Warn("Failed to clean up transaction container")
	}
}
