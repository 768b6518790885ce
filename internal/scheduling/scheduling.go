// Package scheduling runs container-check repeatedly on a cron schedule.
// It prevents overlapping runs, records every run in the metrics and shuts down gracefully on
// interrupt signals or context cancellation.
package scheduling

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/pkg/metrics"
)

// runWaitTimeout bounds how long shutdown waits for an active run.
const runWaitTimeout = 60 * time.Second

// RunFunc performs one complete run and returns its metric.
type RunFunc func(ctx context.Context) *metrics.Metric

// Options configures RunChecksOnSchedule.
type Options struct {
	// Spec is the cron expression; empty runs only when RunOnStart is set.
	Spec string
	// RunOnStart triggers a run before the scheduler starts.
	RunOnStart bool
	// Lock ensures a single active run, a new lock is created when nil.
	Lock chan bool
	// Metrics records every run, metrics.Default when nil.
	Metrics *metrics.Metrics
	// MetricsFile is rewritten after every run when set.
	MetricsFile string
	// OnStart is called once with the first scheduled run time, zero when nothing is scheduled.
	OnStart func(nextRun time.Time)
}

// WaitForRunningCheck waits for any currently running check to complete before proceeding with shutdown.
// Parameters:
//   - ctx: The context for cancellation, allowing early shutdown on context timeout.
//   - lock: The channel used to synchronize runs, ensuring only one runs at a time.
func WaitForRunningCheck(ctx context.Context, lock chan bool) {
	logrus.Debug("Checking lock status before shutdown.")

	if len(lock) == 0 {
		select {
		case v := <-lock:
			lock <- v

			logrus.Debug("Lock acquired, run finished.")
		case <-time.After(runWaitTimeout):
			logrus.Warn("Timeout waiting for running check to finish, proceeding with shutdown.")
		case <-ctx.Done():
			logrus.Warn("Context cancelled while waiting for running check.")
		}
	} else {
		logrus.Debug("No run active, lock available.")
	}
}

// RunChecksOnSchedule executes run according to the cron expression until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
//
// A scheduled run that fires while the previous one is still active is skipped and counted as such.
//
// Parameters:
//   - ctx: The context controlling the scheduler's lifecycle and passed to every run.
//   - opts: Scheduling options.
//   - run: Function performing one run.
//
// Returns:
//   - error: An error if the cron spec is invalid, nil on shutdown.
func RunChecksOnSchedule(ctx context.Context, opts Options, run RunFunc) error {
	lock := opts.Lock
	if lock == nil {
		lock = make(chan bool, 1)
		lock <- true
	}

	registry := opts.Metrics
	if registry == nil {
		registry = metrics.Default()
	}

	scheduler := cron.New()

	runFunc := func() {
		select {
		case v := <-lock:
			defer func() { lock <- v }()

			registry.RegisterRun(run(ctx))
			logrus.Debug("Check completed")
		default:
			registry.RegisterRun(nil)
			logrus.Info("Skipped check because the previous one is still running")
		}

		if opts.MetricsFile != "" {
			if err := registry.WriteTextfile(opts.MetricsFile); err != nil {
				logrus.WithError(err).WithField("path", opts.MetricsFile).Warn("Failed to export metrics")
			}
		}

		if nextRuns := scheduler.Entries(); len(nextRuns) > 0 {
			logrus.Debug("Scheduled next run: " + nextRuns[0].Next.String())
		}
	}

	if opts.Spec != "" {
		if err := scheduler.AddFunc(opts.Spec, runFunc); err != nil {
			return fmt.Errorf("failed to schedule checks: %w", err)
		}
	}

	var nextRun time.Time
	if entries := scheduler.Entries(); len(entries) > 0 {
		nextRun = entries[0].Schedule.Next(time.Now())
	}

	if opts.OnStart != nil {
		opts.OnStart(nextRun)
	}

	if opts.RunOnStart {
		runFunc()
	}

	scheduler.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	defer signal.Stop(interrupt)

	select {
	case <-ctx.Done():
		logrus.Debug("Context canceled, stopping scheduler...")
	case <-interrupt:
		logrus.Debug("Received interrupt signal, stopping scheduler...")
	}

	scheduler.Stop()
	logrus.Debug("Waiting for running check to be finished...")

	// The active run sees ctx cancelled and is still releasing its update containers.
	WaitForRunningCheck(context.WithoutCancel(ctx), lock)

	logrus.Debug("Scheduler stopped.")

	return nil
}
