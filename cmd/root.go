package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/container-check/internal/actions"
	internalAPI "github.com/nicholas-fedor/container-check/internal/api"
	"github.com/nicholas-fedor/container-check/internal/flags"
	"github.com/nicholas-fedor/container-check/internal/logging"
	"github.com/nicholas-fedor/container-check/internal/meta"
	"github.com/nicholas-fedor/container-check/internal/scheduling"
	"github.com/nicholas-fedor/container-check/pkg/baseline"
	"github.com/nicholas-fedor/container-check/pkg/container"
	"github.com/nicholas-fedor/container-check/pkg/inventory"
	"github.com/nicholas-fedor/container-check/pkg/metrics"
	"github.com/nicholas-fedor/container-check/pkg/notifications"
	"github.com/nicholas-fedor/container-check/pkg/session"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// errWriteReportFailed indicates the machine-readable report could not be written.
var errWriteReportFailed = errors.New("failed to write report")

// config is the run configuration read from flags and environment variables in preRun.
var config types.RunConfig

// containerRuntime is the runtime the audit and update phases run containers with.
//
// It is initialized during preRun from --runtime: the Docker Engine API client configured through
// DOCKER_HOST, DOCKER_TLS_VERIFY and DOCKER_API_VERSION, or the CLI runtime shelling out to
// --runtime-binary.
var containerRuntime types.Runtime

// notifier sends the run summary to the configured shoutrrr services, nil when none are configured.
var notifier types.Notifier

// appFS is the filesystem the inventory, the baseline file and the report file are accessed through.
var appFS = afero.NewOsFs()

// stdout receives the report when --report-file is "-".
var stdout io.Writer = os.Stdout

var rootCmd = NewRootCommand()

// NewRootCommand creates and configures the root command for the container-check CLI.
//
// Returns:
//   - *cobra.Command: A pointer to the fully configured root command, ready for flag registration and execution.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "container-check",
		Short: "Audits container images for stale packages and updates them in place",
		Long: "\ncontainer-check lists the packages installed in every container image of an inventory, reports the ones\n" +
			"missing from a known-good baseline and, with --update, updates and recommits the stale images.",
		Run:    run,
		PreRun: preRun,
		Args:   cobra.NoArgs,
	}
}

// init registers command-line flags for the root command during package initialization.
func init() {
	flags.SetDefaults()
	flags.RegisterDockerFlags(rootCmd)
	flags.RegisterSystemFlags(rootCmd)
	flags.RegisterNotificationFlags(rootCmd)
}

// Execute runs the root command and manages any errors encountered during its execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("Failed to execute root command")
	}
}

// preRun prepares the environment and configuration before the main command execution begins.
//
// It processes flag aliases, configures logging, reads and validates the run configuration and
// initializes the container runtime and the notifier. Invalid configuration is fatal.
//
// Parameters:
//   - cmd: The cobra.Command instance being executed, providing access to parsed flags.
//   - _: Unused positional arguments.
func preRun(cmd *cobra.Command, _ []string) {
	flagsSet := cmd.PersistentFlags()
	flags.ProcessFlagAliases(flagsSet)

	if err := flags.SetupLogging(flagsSet); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logging")
	}

	flags.GetSecretsFromFiles(cmd)

	cfg, err := flags.ReadRunConfig(cmd)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read configuration")
	}

	if err := flags.Validate(cfg); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	params := runParams(cfg, "")
	if err := actions.ValidateParams(params.Audit, params.Update); err != nil {
		logrus.WithError(err).Fatal("Invalid transaction configuration")
	}

	if err := flags.EnvConfig(cmd); err != nil {
		logrus.WithError(err).Fatal("Failed to configure Docker environment")
	}

	if containerRuntime, err = newRuntime(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container runtime")
	}

	if notifier, err = newNotifier(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize notifications")
	}

	config = cfg
}

// run executes container-check and exits with the status of the run.
//
// Parameters:
//   - c: The cobra.Command instance being executed.
//   - _: Unused positional arguments.
func run(c *cobra.Command, _ []string) {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if exitCode := runMain(ctx, config); exitCode != 0 {
		logrus.WithField("exit_code", exitCode).Debug("Exiting with non-zero status")
		os.Exit(exitCode)
	}
}

// newRuntime creates the runtime selected by cfg.Runtime.
func newRuntime(cfg types.RunConfig) (types.Runtime, error) {
	if cfg.Runtime == flags.RuntimeCLI {
		return container.NewCLI(cfg.RuntimeBinary), nil
	}

	client, err := container.NewClient(container.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return client, nil
}

// newNotifier creates the notifier, or returns nil when no service is configured.
func newNotifier(cfg types.RunConfig) (types.Notifier, error) {
	if len(cfg.NotificationURLs) == 0 {
		return nil, nil
	}

	sender, err := notifications.NewNotifier(notifications.Config{
		URLs:     cfg.NotificationURLs,
		Title:    cfg.NotificationTitle,
		Template: cfg.NotificationTemplate,
		Stdout:   cfg.NotificationStdout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	return sender, nil
}

// runParams maps the configuration to the orchestration parameters.
func runParams(cfg types.RunConfig, runtimeName string) actions.RunParams {
	return actions.RunParams{
		Audit: types.AuditParams{
			Workers:     cfg.Workers,
			ListCommand: cfg.ListCommand,
			User:        cfg.User,
			Timeout:     cfg.RunTimeout,
		},
		Update: types.UpdateParams{
			Workers:           cfg.Workers,
			UpdateCommand:     cfg.UpdateCommand,
			CommitMessage:     cfg.CommitMessage,
			TransactionPrefix: cfg.TransactionPrefix,
			Mounts:            cfg.RepoMounts(),
			NetworkMode:       cfg.NetworkMode,
			User:              cfg.User,
			Timeout:           cfg.RunTimeout,
		},
		UpdateRequested: cfg.Update,
		Verify:          cfg.Verify,
		RuntimeName:     runtimeName,
	}
}

// runMain runs container-check once, on a schedule or behind the HTTP API.
//
// A single run exits with the status of its report. Scheduled runs and the blocking HTTP API exit 0
// after a clean shutdown. SIGINT and SIGTERM cancel the active run; its update containers are still
// removed.
//
// Parameters:
//   - ctx: Parent context.
//   - cfg: Validated run configuration.
//
// Returns:
//   - int: Process exit code.
func runMain(ctx context.Context, cfg types.RunConfig) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Shared by the scheduler and the check endpoint so only one run is active at a time.
	lock := make(chan bool, 1)
	lock <- true

	if cfg.HTTPAPIEnabled() {
		blocking := cfg.HTTPAPICheck && cfg.Schedule == ""
		if blocking {
			logging.WriteStartupMessage(cfg, time.Time{}, containerRuntime, notifier, meta.Version)
		}

		if err := internalAPI.SetupAndStartAPI(ctx, internalAPI.Options{
			Host:          cfg.HTTPAPIHost,
			Port:          cfg.HTTPAPIPort,
			Token:         cfg.HTTPAPIToken,
			EnableCheck:   cfg.HTTPAPICheck,
			EnableMetrics: cfg.HTTPAPIMetrics,
			Block:         blocking,
			Lock:          lock,
			MetricsFile:   cfg.MetricsFile,
		}, apiCheck(cfg)); err != nil {
			logrus.WithError(err).Error("HTTP API failed")

			return 1
		}

		if blocking {
			return 0
		}
	}

	if cfg.Schedule == "" {
		logging.WriteStartupMessage(cfg, time.Time{}, containerRuntime, notifier, meta.Version)

		report, err := runChecks(ctx, cfg, nil)
		if report != nil {
			recordMetrics(metrics.NewMetric(report), cfg.MetricsFile)
		}

		if err != nil {
			logrus.WithError(err).Error("Check failed")

			return 1
		}

		return report.ExitCode()
	}

	err := scheduling.RunChecksOnSchedule(ctx, scheduling.Options{
		Spec:        cfg.Schedule,
		RunOnStart:  cfg.RunOnStart,
		Lock:        lock,
		MetricsFile: cfg.MetricsFile,
		OnStart: func(nextRun time.Time) {
			logging.WriteStartupMessage(cfg, nextRun, containerRuntime, notifier, meta.Version)
		},
	}, func(ctx context.Context) *metrics.Metric {
		report, err := runChecks(ctx, cfg, nil)
		if err != nil {
			logrus.WithError(err).Error("Check failed")
		}

		if report == nil {
			return &metrics.Metric{}
		}

		return metrics.NewMetric(report)
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to schedule checks")

		return 1
	}

	return 0
}

// apiCheck adapts runChecks to the check endpoint.
func apiCheck(cfg types.RunConfig) internalAPI.CheckFunc {
	return func(ctx context.Context, images []string) (types.Summary, *metrics.Metric, error) {
		report, err := runChecks(ctx, cfg, images)
		if report == nil {
			return nil, &metrics.Metric{}, err
		}

		return report, metrics.NewMetric(report), err
	}
}

// runChecks loads the inputs, runs both phases and writes the report.
//
// Parameters:
//   - ctx: Context for the runtime calls.
//   - cfg: Validated run configuration.
//   - only: Inventory entries to check, empty for all.
//
// Returns:
//   - *session.Report: Report of the run, nil if the inputs could not be loaded.
//   - error: Non-nil if an input could not be loaded or the report could not be written.
func runChecks(ctx context.Context, cfg types.RunConfig, only []string) (*session.Report, error) {
	images, err := inventory.Load(appFS, cfg.ContainersFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load container inventory: %w", err)
	}

	images = inventory.Select(images, only)

	provider := baselineProvider(cfg)

	set, err := provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load package baseline: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"containers": len(images),
		"baseline":   baseline.Summary(provider, set),
	}).Info("Starting check")

	report := actions.RunChecksWithNotifications(
		ctx,
		containerRuntime,
		notifier,
		images,
		set,
		runParams(cfg, containerRuntime.Name()),
	)

	if err := writeReport(report, cfg); err != nil {
		return report, err
	}

	return report, nil
}

// baselineProvider selects the command provider when a baseline image is configured.
func baselineProvider(cfg types.RunConfig) baseline.Provider {
	if cfg.BaselineImage != "" {
		return baseline.NewCommandProvider(
			containerRuntime,
			cfg.BaselineImage,
			cfg.BaselineCommand,
			cfg.RepoMounts(),
			cfg.NetworkMode,
			cfg.User,
		)
	}

	return baseline.NewFileProvider(appFS, cfg.BaselineFile)
}

// writeReport renders the report to --report-file.
func writeReport(report *session.Report, cfg types.RunConfig) error {
	if cfg.ReportFile == "" {
		return nil
	}

	format, err := session.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteReportFailed, err)
	}

	if cfg.ReportFile == "-" {
		if err := report.Write(stdout, format); err != nil {
			return fmt.Errorf("%w: %w", errWriteReportFailed, err)
		}

		return nil
	}

	file, err := appFS.Create(cfg.ReportFile)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteReportFailed, err)
	}

	if err := report.Write(file, format); err != nil {
		_ = file.Close()

		return fmt.Errorf("%w: %w", errWriteReportFailed, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %w", errWriteReportFailed, err)
	}

	logrus.WithField("path", cfg.ReportFile).Debug("Wrote report")

	return nil
}

// recordMetrics registers a single run and exports it when a metrics file is configured.
func recordMetrics(metric *metrics.Metric, path string) {
	registry := metrics.Default()
	registry.RegisterRun(metric)

	if path == "" {
		return
	}

	if err := registry.WriteTextfile(path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("Failed to export metrics")
	}
}
