// Package pool runs independent tasks across a bounded number of goroutines and joins their results.
package pool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers returns the default pool size, the number of logical CPUs usable by the process.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Size normalizes a requested pool size.
//
// Parameters:
//   - requested: Requested number of workers, values below one select DefaultWorkers.
//   - tasks: Number of tasks to run, used to avoid idle workers.
//
// Returns:
//   - int: Effective number of workers, at least one.
func Size(requested, tasks int) int {
	size := requested
	if size < 1 {
		size = DefaultWorkers()
	}

	if tasks > 0 && size > tasks {
		size = tasks
	}

	return max(size, 1)
}

// Map applies fn to every task using at most workers concurrent goroutines and returns the results in
// task order once every invocation has returned.
//
// fn reports failures through its result value; Map never stops early, so one failing task cannot
// cancel its siblings. Each result slot has exactly one writer and the slice is only read after the
// barrier, so no locking is required.
//
// Parameters:
//   - ctx: Context passed through to every invocation.
//   - workers: Maximum concurrency, values below one select DefaultWorkers.
//   - tasks: Inputs, one invocation each.
//   - fn: Work function.
//
// Returns:
//   - []R: Results, results[i] belongs to tasks[i].
func Map[T, R any](ctx context.Context, workers int, tasks []T, fn func(context.Context, T) R) []R {
	results := make([]R, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var group errgroup.Group

	group.SetLimit(Size(workers, len(tasks)))

	for i, task := range tasks {
		group.Go(func() error {
			results[i] = fn(ctx, task)

			return nil
		})
	}

	// Workers never return errors, Wait is only the barrier.
	_ = group.Wait()

	return results
}
