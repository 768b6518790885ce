package types

import "time"

// RunConfig holds the parsed command-line configuration of a container-check invocation.
//
// It is read once from flags and environment variables in the root command's preRun and then passed
// through the run flow.
type RunConfig struct {
	// ContainersFile is the inventory of container images, set via --containers.
	ContainersFile string
	// BaselineFile is the newline-delimited baseline package list, set via --rpm-list.
	BaselineFile string
	// BaselineImage selects the command baseline provider when set, via --baseline-image.
	BaselineImage string
	// BaselineCommand lists the available packages inside BaselineImage, set via --baseline-command.
	BaselineCommand []string
	// Workers is the size of both worker pools, set via --process-count.
	Workers int
	// Update enables the update phase, set via --update.
	Update bool
	// Verify re-audits updated images, set via --verify-updates.
	Verify bool
	// RunTimeout bounds the runtime calls of each worker, zero for none, set via --run-timeout.
	RunTimeout time.Duration
	// Runtime selects the container runtime implementation ("api" or "cli"), set via --runtime.
	Runtime string
	// RuntimeBinary is the executable used by the cli runtime, set via --runtime-binary.
	RuntimeBinary string
	// RepoDir is the absolute host directory holding repository configuration, set via --repo-dir.
	RepoDir string
	// RepoMount is where RepoDir is mounted in update containers, set via --repo-mount.
	RepoMount string
	// NetworkMode is the network of update containers, set via --network.
	NetworkMode string
	// User runs the list and update commands, set via --user.
	User string
	// ListCommand prints installed packages, set via --list-command.
	ListCommand []string
	// UpdateCommand updates packages in place, set via --update-command.
	UpdateCommand []string
	// CommitMessage annotates committed images, set via --commit-message.
	CommitMessage string
	// TransactionPrefix prefixes update container names, set via --transaction-prefix.
	TransactionPrefix string
	// ReportFormat is the machine-readable report format, set via --report-format.
	ReportFormat string
	// ReportFile receives the report, "-" for stdout and empty for none, set via --report-file.
	ReportFile string
	// MetricsFile receives the Prometheus textfile export when set, via --metrics-file.
	MetricsFile string
	// NotificationURLs are the shoutrrr service URLs, set via --notification-url.
	NotificationURLs []string
	// NotificationTitle overrides the notification title, set via --notification-title.
	NotificationTitle string
	// NotificationTemplate selects or defines the notification template, set via --notification-template.
	NotificationTemplate string
	// NotificationStdout writes shoutrrr diagnostics to stdout, set via --notification-log-stdout.
	NotificationStdout bool
	// Schedule is the cron expression for repeated runs, empty to run once, set via --schedule.
	Schedule string
	// RunOnStart runs immediately before the first scheduled run, set via --run-on-start.
	RunOnStart bool
	// NoStartupMessage suppresses the startup message, set via --no-startup-message.
	NoStartupMessage bool
	// HTTPAPICheck serves the on-demand check endpoint, set via --http-api-check.
	HTTPAPICheck bool
	// HTTPAPIMetrics serves the Prometheus metrics endpoint, set via --http-api-metrics.
	HTTPAPIMetrics bool
	// HTTPAPIToken authenticates HTTP API requests, set via --http-api-token.
	HTTPAPIToken string
	// HTTPAPIHost is the address the HTTP API binds to, empty for all interfaces, set via --http-api-host.
	HTTPAPIHost string
	// HTTPAPIPort is the HTTP API port, set via --http-api-port.
	HTTPAPIPort string
}

// HTTPAPIEnabled reports whether any HTTP API endpoint is enabled.
func (c RunConfig) HTTPAPIEnabled() bool {
	return c.HTTPAPICheck || c.HTTPAPIMetrics
}

// RepoMounts returns the repository configuration mount of update containers.
//
// Returns:
//   - []Mount: One mount, or nil when no repository directory is configured.
func (c RunConfig) RepoMounts() []Mount {
	if c.RepoDir == "" || c.RepoMount == "" {
		return nil
	}

	return []Mount{{Source: c.RepoDir, Target: c.RepoMount}}
}
