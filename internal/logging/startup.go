// Package logging provides functions for logging startup information of container-check.
// It reports the version, runtime, inputs, notification setup and schedule before the first run.
package logging

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/internal/util"
	"github.com/nicholas-fedor/container-check/pkg/notifications"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// versioned is implemented by runtimes that know the API version they speak.
type versioned interface {
	Version() string
}

// WriteStartupMessage logs startup information based on the run configuration.
//
// Parameters:
//   - config: Parsed run configuration.
//   - sched: The time of the first scheduled run, or zero if no schedule is set.
//   - runtime: Container runtime in use, may be nil.
//   - notifier: Notifier in use, may be nil.
//   - version: The container-check version.
func WriteStartupMessage(
	config types.RunConfig,
	sched time.Time,
	runtime types.Runtime,
	notifier types.Notifier,
	version string,
) {
	if config.NoStartupMessage {
		return
	}

	startupLog := SetupStartupLogger(config.NoStartupMessage)

	switch {
	case runtime == nil:
		startupLog.Info("container-check ", version)
	case hasVersion(runtime):
		startupLog.Info("container-check ", version, " using ", runtime.Name(), " v", runtime.(versioned).Version())
	default:
		startupLog.Info("container-check ", version, " using ", runtime.Name())
	}

	baselineSource := config.BaselineFile
	if config.BaselineImage != "" {
		baselineSource = "image " + config.BaselineImage
	}

	startupLog.WithFields(logrus.Fields{
		"containers": config.ContainersFile,
		"baseline":   baselineSource,
		"workers":    config.Workers,
	}).Info("Checking containers against the package baseline")

	if config.Update {
		startupLog.WithFields(logrus.Fields{
			"command": strings.Join(config.UpdateCommand, " "),
			"verify":  config.Verify,
		}).Info("Stale containers will be updated and committed")
	}

	var notifierNames []string
	if notifier != nil {
		notifierNames = notifier.GetNames()
	}

	LogNotifierInfo(startupLog, notifierNames)
	LogScheduleInfo(startupLog, config, sched)

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		startupLog.Warn(
			"Trace level enabled: log will include sensitive information such as notification URLs",
		)
	}
}

// hasVersion reports whether the runtime exposes its API version.
func hasVersion(runtime types.Runtime) bool {
	_, ok := runtime.(versioned)

	return ok
}

// SetupStartupLogger returns the entry startup messages are written to.
//
// Parameters:
//   - noStartupMessage: Whether startup messages are suppressed.
//
// Returns:
//   - *logrus.Entry: A configured log entry for writing startup messages.
func SetupStartupLogger(noStartupMessage bool) *logrus.Entry {
	if noStartupMessage {
		return notifications.LocalLog
	}

	return logrus.NewEntry(logrus.StandardLogger())
}

// LogNotifierInfo logs details about the notification setup.
//
// Parameters:
//   - log: The logrus.Entry used to write the notification information.
//   - notifierNames: A slice of strings representing the names of configured notifiers.
func LogNotifierInfo(log *logrus.Entry, notifierNames []string) {
	if len(notifierNames) > 0 {
		log.Info("Using notifications: " + strings.Join(notifierNames, ", "))
	} else {
		log.Info("Using no notifications")
	}
}

// LogScheduleInfo logs information about the scheduling or run mode configuration.
//
// Parameters:
//   - log: The logrus.Entry used to write the schedule information.
//   - config: Parsed run configuration.
//   - sched: The time of the first scheduled run, or zero if no schedule is set.
func LogScheduleInfo(log *logrus.Entry, config types.RunConfig, sched time.Time) {
	switch {
	case !sched.IsZero() && config.RunOnStart:
		log.Info("Running a check on start, then scheduling periodic checks.")
		log.Info("Scheduling next run: " + sched.Format("2006-01-02 15:04:05 -0700 MST"))
	case !sched.IsZero():
		until := util.FormatDuration(time.Until(sched))
		log.Info("Scheduling next run: " + sched.Format("2006-01-02 15:04:05 -0700 MST"))
		log.Info("Note that the next check will be performed in " + until)
	case config.HTTPAPICheck:
		log.Info("Checks will only be performed when requested through the HTTP API.")
	default:
		log.Info("Running a one time check.")
	}
}
