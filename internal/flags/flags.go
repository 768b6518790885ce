// Package flags manages command-line flags and environment variables for container-check configuration.
package flags

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nicholas-fedor/container-check/internal/util"
	"github.com/nicholas-fedor/container-check/pkg/session"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// DockerAPIMinVersion specifies the minimum Docker API version required by container-check.
const DockerAPIMinVersion string = "1.44"

// Runtime names accepted by --runtime.
const (
	RuntimeAPI = "api"
	RuntimeCLI = "cli"
)

// Default values of the transaction flags, matching a yum based fleet.
const (
	defaultRepoDir           = "./etc/yum.repos.d"
	defaultRepoMount         = "/etc/yum.repos.d"
	defaultListCommand       = "rpm -qa"
	defaultUpdateCommand     = "yum -y update"
	defaultBaselineCommand   = "dnf repoquery --quiet --queryformat %{name}-%{version}-%{release}.%{arch}"
	defaultCommitMessage     = "automatic yum update"
	defaultTransactionPrefix = "yum-update-"
)

// errInvalidLogFormat indicates an invalid log format was specified.
var errInvalidLogFormat = errors.New("invalid log format specified")

// errInvalidLogLevel indicates an invalid log level was specified.
var errInvalidLogLevel = errors.New("invalid log level specified")

// errSetEnvFailed indicates a failure to set an environment variable.
// It is used in setEnvOptStr to wrap os.Setenv errors.
var errSetEnvFailed = errors.New("failed to set environment variable")

// errOpenFileFailed indicates a failure to open a file for reading secrets.
var errOpenFileFailed = errors.New("failed to open secret file")

// errCloseFileFailed indicates a failure to close a file after reading secrets.
var errCloseFileFailed = errors.New("failed to close secret file")

// errReplaceSliceFailed indicates a failure to replace a slice value in a flag.
var errReplaceSliceFailed = errors.New("failed to replace slice value in flag")

// errReadFileFailed indicates a failure to read a file’s contents.
var errReadFileFailed = errors.New("failed to read secret file")

// errSetFlagFailed indicates a failure to read or set a flag’s value.
// It is used in getSecretFromFile, setFlagIfDefault and the flag readers.
var errSetFlagFailed = errors.New("failed to set flag value")

// errInvalidFlagName indicates an invalid flag name was provided.
// It is used in appendFlagValue to report flag lookup errors.
var errInvalidFlagName = errors.New("invalid flag name provided")

// errNotSliceValue indicates a flag does not support slice values.
// It is used in appendFlagValue to report type errors.
var errNotSliceValue = errors.New("flag does not support slice values")

// errInvalidConfig indicates a combination of flag values that cannot run.
var errInvalidConfig = errors.New("invalid configuration")

// RegisterDockerFlags adds flags used directly by the Docker API client to the root command.
// These flags configure the Docker connection settings.
func RegisterDockerFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringP("host", "H", envString("DOCKER_HOST"), "daemon socket to connect to")
	flags.BoolP("tlsverify", "v", envBool("DOCKER_TLS_VERIFY"), "use TLS and verify the remote")
	flags.StringP(
		"api-version",
		"a",
		envString("DOCKER_API_VERSION"),
		"api version to use by docker client",
	)
}

// RegisterSystemFlags adds flags that control inputs, execution, transactions, output and logging
// to the root command.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringP(
		"containers",
		"c",
		envString("CONTAINER_CHECK_CONTAINERS"),
		"File listing the container images to check, one per line")

	flags.StringP(
		"rpm-list",
		"r",
		envString("CONTAINER_CHECK_RPM_LIST"),
		"File listing the baseline packages, one per line")

	flags.String(
		"baseline-image",
		envString("CONTAINER_CHECK_BASELINE_IMAGE"),
		"Image to query for the baseline packages instead of reading --rpm-list")

	flags.String(
		"baseline-command",
		envString("CONTAINER_CHECK_BASELINE_COMMAND"),
		"Command printing the available packages inside --baseline-image")

	flags.IntP(
		"process-count",
		"p",
		envInt("CONTAINER_CHECK_PROCESS_COUNT"),
		"Number of containers inspected or updated concurrently")

	flags.BoolP(
		"update",
		"u",
		envBool("CONTAINER_CHECK_UPDATE"),
		"Update and commit every container image with stale packages")

	flags.Bool(
		"verify-updates",
		envBool("CONTAINER_CHECK_VERIFY_UPDATES"),
		"Inspect updated container images again after committing them")

	flags.Duration(
		"run-timeout",
		envDuration("CONTAINER_CHECK_RUN_TIMEOUT"),
		"Deadline for the runtime calls of each container, 0 for none")

	flags.String(
		"runtime",
		envString("CONTAINER_CHECK_RUNTIME"),
		"Container runtime to use. Possible values: api or cli")

	flags.String(
		"runtime-binary",
		envString("CONTAINER_CHECK_RUNTIME_BINARY"),
		"Executable used by the cli runtime, such as docker or podman")

	flags.String(
		"repo-dir",
		envString("CONTAINER_CHECK_REPO_DIR"),
		"Host directory holding the package repository configuration")

	flags.String(
		"repo-mount",
		envString("CONTAINER_CHECK_REPO_MOUNT"),
		"Path the repository configuration is mounted at inside update containers")

	flags.String(
		"network",
		envString("CONTAINER_CHECK_NETWORK"),
		"Network mode of update containers")

	flags.String(
		"user",
		envString("CONTAINER_CHECK_USER"),
		"User running the list and update commands")

	flags.String(
		"list-command",
		envString("CONTAINER_CHECK_LIST_COMMAND"),
		"Command printing the installed packages, one per line")

	flags.String(
		"update-command",
		envString("CONTAINER_CHECK_UPDATE_COMMAND"),
		"Command updating packages in place")

	flags.String(
		"commit-message",
		envString("CONTAINER_CHECK_COMMIT_MESSAGE"),
		"Message stored on committed images")

	flags.String(
		"transaction-prefix",
		envString("CONTAINER_CHECK_TRANSACTION_PREFIX"),
		"Name prefix of the transient update containers")

	flags.String(
		"report-format",
		envString("CONTAINER_CHECK_REPORT_FORMAT"),
		"Format of the report. Possible values: text, json or yaml")

	flags.String(
		"report-file",
		envString("CONTAINER_CHECK_REPORT_FILE"),
		"File receiving the report, - for stdout, empty for none")

	flags.String(
		"metrics-file",
		envString("CONTAINER_CHECK_METRICS_FILE"),
		"File receiving Prometheus metrics in the textfile collector format")

	flags.StringP(
		"schedule",
		"s",
		envString("CONTAINER_CHECK_SCHEDULE"),
		"The cron expression which defines when to check, empty to check once")

	flags.Bool(
		"run-on-start",
		envBool("CONTAINER_CHECK_RUN_ON_START"),
		"Check immediately on startup, then follow --schedule")

	flags.BoolP(
		"no-startup-message",
		"",
		envBool("CONTAINER_CHECK_NO_STARTUP_MESSAGE"),
		"Prevents container-check from logging a startup message")

	flags.Bool(
		"http-api-check",
		envBool("CONTAINER_CHECK_HTTP_API_CHECK"),
		"Serve POST /v1/check to trigger checks over HTTP")

	flags.Bool(
		"http-api-metrics",
		envBool("CONTAINER_CHECK_HTTP_API_METRICS"),
		"Serve Prometheus metrics on /v1/metrics")

	flags.String(
		"http-api-token",
		envString("CONTAINER_CHECK_HTTP_API_TOKEN"),
		"Bearer token required by the HTTP API, or a file containing it")

	flags.String(
		"http-api-host",
		envString("CONTAINER_CHECK_HTTP_API_HOST"),
		"Address the HTTP API binds to, empty for all interfaces")

	flags.String(
		"http-api-port",
		envString("CONTAINER_CHECK_HTTP_API_PORT"),
		"Port of the HTTP API")

	flags.StringP(
		"log-format",
		"l",
		envString("CONTAINER_CHECK_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty, JSON")

	flags.BoolP(
		"debug",
		"d",
		envBool("CONTAINER_CHECK_DEBUG"),
		"Enable debug mode with verbose logging")

	flags.BoolP(
		"trace",
		"",
		envBool("CONTAINER_CHECK_TRACE"),
		"Enable trace mode with very verbose logging - caution, exposes notification URLs")

	// https://no-color.org/
	flags.BoolP(
		"no-color",
		"",
		viper.IsSet("NO_COLOR"),
		"Disable ANSI color escape codes in log output")

	flags.String(
		"log-level",
		envString("CONTAINER_CHECK_LOG_LEVEL"),
		"The maximum log level that will be written to STDERR. Possible values: panic, fatal, error, warn, info, debug or trace",
	)

	flags.StringP(
		"porcelain",
		"P",
		envString("CONTAINER_CHECK_PORCELAIN"),
		`Write session results to stdout using a stable versioned format. Supported values: "v1"`)
}

// RegisterNotificationFlags adds flags for configuring run notifications to the root command.
func RegisterNotificationFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringArray(
		"notification-url",
		envStringSlice("CONTAINER_CHECK_NOTIFICATION_URL"),
		"The shoutrrr URL to send notifications to")

	flags.String(
		"notification-title",
		envString("CONTAINER_CHECK_NOTIFICATION_TITLE"),
		"Title of notifications, defaults to the host name")

	flags.String(
		"notification-template",
		envString("CONTAINER_CHECK_NOTIFICATION_TEMPLATE"),
		"The shoutrrr text/template for the messages or the name of a built-in template")

	flags.Bool(
		"notification-log-stdout",
		envBool("CONTAINER_CHECK_NOTIFICATION_LOG_STDOUT"),
		"Write notification logs to stdout instead of logging (to stderr)")
}

// envString retrieves a string value from an environment variable via Viper.
// It binds the key to the environment and returns its value.
func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

// envStringSlice retrieves a string slice from an environment variable via Viper.
func envStringSlice(key string) []string {
	viper.MustBindEnv(key)

	return viper.GetStringSlice(key)
}

// envInt retrieves an integer value from an environment variable via Viper.
func envInt(key string) int {
	viper.MustBindEnv(key)

	return viper.GetInt(key)
}

// envBool retrieves a boolean value from an environment variable via Viper.
func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

// envDuration retrieves a duration value from an environment variable via Viper.
func envDuration(key string) time.Duration {
	viper.MustBindEnv(key)

	return viper.GetDuration(key)
}

// SetDefaults configures default values for environment variables.
// It ensures consistent fallback behavior when flags or environment variables are unset.
func SetDefaults() {
	viper.AutomaticEnv()
	viper.SetDefault("DOCKER_HOST", "unix:///var/run/docker.sock")
	viper.SetDefault("DOCKER_API_VERSION", DockerAPIMinVersion)
	viper.SetDefault("CONTAINER_CHECK_CONTAINERS", "container_list")
	viper.SetDefault("CONTAINER_CHECK_RPM_LIST", "rpm_list")
	viper.SetDefault("CONTAINER_CHECK_BASELINE_COMMAND", defaultBaselineCommand)
	viper.SetDefault("CONTAINER_CHECK_PROCESS_COUNT", runtime.NumCPU())
	viper.SetDefault("CONTAINER_CHECK_RUNTIME", RuntimeAPI)
	viper.SetDefault("CONTAINER_CHECK_RUNTIME_BINARY", "docker")
	viper.SetDefault("CONTAINER_CHECK_REPO_DIR", defaultRepoDir)
	viper.SetDefault("CONTAINER_CHECK_REPO_MOUNT", defaultRepoMount)
	viper.SetDefault("CONTAINER_CHECK_NETWORK", "host")
	viper.SetDefault("CONTAINER_CHECK_USER", "root")
	viper.SetDefault("CONTAINER_CHECK_LIST_COMMAND", defaultListCommand)
	viper.SetDefault("CONTAINER_CHECK_UPDATE_COMMAND", defaultUpdateCommand)
	viper.SetDefault("CONTAINER_CHECK_COMMIT_MESSAGE", defaultCommitMessage)
	viper.SetDefault("CONTAINER_CHECK_TRANSACTION_PREFIX", defaultTransactionPrefix)
	viper.SetDefault("CONTAINER_CHECK_REPORT_FORMAT", string(session.FormatText))
	viper.SetDefault("CONTAINER_CHECK_NOTIFICATION_URL", []string{})
	viper.SetDefault("CONTAINER_CHECK_HTTP_API_PORT", "8080")
	viper.SetDefault("CONTAINER_CHECK_LOG_LEVEL", "info")
	viper.SetDefault("CONTAINER_CHECK_LOG_FORMAT", "auto")
}

// EnvConfig sets environment variables based on Docker-related flags.
// It configures the Docker client’s environment, returning an error if flag retrieval fails.
func EnvConfig(cmd *cobra.Command) error {
	var err error

	var host string

	var tls bool

	var version string

	flags := cmd.PersistentFlags()

	if host, err = flags.GetString("host"); err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if tls, err = flags.GetBool("tlsverify"); err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if version, err = flags.GetString("api-version"); err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err = setEnvOptStr("DOCKER_HOST", host); err != nil {
		return err
	}

	if err = setEnvOptBool("DOCKER_TLS_VERIFY", tls); err != nil {
		return err
	}

	if err = setEnvOptStr("DOCKER_API_VERSION", version); err != nil {
		return err
	}

	return nil
}

// flagReader collects the first error of a sequence of flag lookups.
type flagReader struct {
	flags *pflag.FlagSet
	err   error
}

func (r *flagReader) check(err error) {
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}
}

func (r *flagReader) string(name string) string {
	value, err := r.flags.GetString(name)
	r.check(err)

	return value
}

func (r *flagReader) bool(name string) bool {
	value, err := r.flags.GetBool(name)
	r.check(err)

	return value
}

func (r *flagReader) int(name string) int {
	value, err := r.flags.GetInt(name)
	r.check(err)

	return value
}

func (r *flagReader) duration(name string) time.Duration {
	value, err := r.flags.GetDuration(name)
	r.check(err)

	return value
}

func (r *flagReader) stringArray(name string) []string {
	value, err := r.flags.GetStringArray(name)
	r.check(err)

	return value
}

// ReadRunConfig reads the run configuration from the parsed flags.
//
// Commands are split on whitespace and the repository directory is resolved to an absolute path.
//
// Parameters:
//   - cmd: Root command with registered and parsed flags.
//
// Returns:
//   - types.RunConfig: Parsed configuration.
//   - error: Non-nil if a flag is missing or the repository directory cannot be resolved.
func ReadRunConfig(cmd *cobra.Command) (types.RunConfig, error) {
	reader := &flagReader{flags: cmd.PersistentFlags()}

	config := types.RunConfig{
		ContainersFile:       reader.string("containers"),
		BaselineFile:         reader.string("rpm-list"),
		BaselineImage:        reader.string("baseline-image"),
		BaselineCommand:      util.SplitCommand(reader.string("baseline-command")),
		Workers:              reader.int("process-count"),
		Update:               reader.bool("update"),
		Verify:               reader.bool("verify-updates"),
		RunTimeout:           reader.duration("run-timeout"),
		Runtime:              strings.ToLower(reader.string("runtime")),
		RuntimeBinary:        reader.string("runtime-binary"),
		RepoDir:              reader.string("repo-dir"),
		RepoMount:            reader.string("repo-mount"),
		NetworkMode:          reader.string("network"),
		User:                 reader.string("user"),
		ListCommand:          util.SplitCommand(reader.string("list-command")),
		UpdateCommand:        util.SplitCommand(reader.string("update-command")),
		CommitMessage:        reader.string("commit-message"),
		TransactionPrefix:    reader.string("transaction-prefix"),
		ReportFormat:         reader.string("report-format"),
		ReportFile:           reader.string("report-file"),
		MetricsFile:          reader.string("metrics-file"),
		NotificationURLs:     util.FilterEmpty(reader.stringArray("notification-url")),
		NotificationTitle:    reader.string("notification-title"),
		NotificationTemplate: reader.string("notification-template"),
		NotificationStdout:   reader.bool("notification-log-stdout"),
		Schedule:             reader.string("schedule"),
		RunOnStart:           reader.bool("run-on-start"),
		NoStartupMessage:     reader.bool("no-startup-message"),
		HTTPAPICheck:         reader.bool("http-api-check"),
		HTTPAPIMetrics:       reader.bool("http-api-metrics"),
		HTTPAPIToken:         reader.string("http-api-token"),
		HTTPAPIHost:          reader.string("http-api-host"),
		HTTPAPIPort:          reader.string("http-api-port"),
	}

	if reader.err != nil {
		return types.RunConfig{}, reader.err
	}

	if config.RepoDir != "" {
		absolute, err := filepath.Abs(config.RepoDir)
		if err != nil {
			return types.RunConfig{}, fmt.Errorf("%w: repo-dir %q: %w", errInvalidConfig, config.RepoDir, err)
		}

		config.RepoDir = absolute
	}

	logrus.WithFields(logrus.Fields{
		"containers": config.ContainersFile,
		"workers":    config.Workers,
		"runtime":    config.Runtime,
		"update":     config.Update,
		"schedule":   config.Schedule,
	}).Debug("Read run configuration")

	return config, nil
}

// Validate rejects configurations that cannot run.
//
// Parameters:
//   - config: Configuration read by ReadRunConfig.
//
// Returns:
//   - error: Non-nil describing the first invalid setting.
func Validate(config types.RunConfig) error {
	if config.Workers < 1 {
		return fmt.Errorf("%w: process count must be at least 1, got %d", errInvalidConfig, config.Workers)
	}

	if !slices.Contains([]string{RuntimeAPI, RuntimeCLI}, config.Runtime) {
		return fmt.Errorf("%w: unknown runtime %q", errInvalidConfig, config.Runtime)
	}

	if config.Runtime == RuntimeCLI && config.RuntimeBinary == "" {
		return fmt.Errorf("%w: the cli runtime needs --runtime-binary", errInvalidConfig)
	}

	if _, err := session.ParseFormat(config.ReportFormat); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	if config.Verify && !config.Update {
		return fmt.Errorf("%w: --verify-updates requires --update", errInvalidConfig)
	}

	if config.BaselineImage == "" && config.BaselineFile == "" {
		return fmt.Errorf("%w: either --rpm-list or --baseline-image is required", errInvalidConfig)
	}

	if config.BaselineImage != "" && len(config.BaselineCommand) == 0 {
		return fmt.Errorf("%w: --baseline-image needs --baseline-command", errInvalidConfig)
	}

	if config.ContainersFile == "" {
		return fmt.Errorf("%w: --containers is required", errInvalidConfig)
	}

	if config.RunTimeout < 0 {
		return fmt.Errorf("%w: run timeout must not be negative", errInvalidConfig)
	}

	if config.HTTPAPIEnabled() && config.HTTPAPIToken == "" {
		return fmt.Errorf("%w: the HTTP API needs --http-api-token", errInvalidConfig)
	}

	return nil
}

// setEnvOptStr sets an environment variable to a specified string value if needed.
// It skips setting if the value is empty or matches the current environment, returning an error if the set fails.
func setEnvOptStr(env string, opt string) error {
	if opt == "" || opt == os.Getenv(env) {
		return nil
	}

	if err := os.Setenv(env, opt); err != nil {
		return fmt.Errorf("%w: %s: %w", errSetEnvFailed, env, err)
	}

	return nil
}

// setEnvOptBool sets an environment variable to "1" if the boolean is true.
func setEnvOptBool(env string, opt bool) error {
	if opt {
		return setEnvOptStr(env, "1")
	}

	return nil
}

// GetSecretsFromFiles replaces flag values with file contents if they reference files.
func GetSecretsFromFiles(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	secrets := []string{
		"notification-url",
		"http-api-token",
	}
	for _, secret := range secrets {
		if err := getSecretFromFile(flags, secret); err != nil {
			logrus.Fatalf("failed to get secret from flag %v: %s", secret, err)
		}
	}
}

// getSecretFromFile updates a flag’s value with file contents if it references a file.
// It handles both string and slice flags, returning an error if file operations fail.
func getSecretFromFile(flags *pflag.FlagSet, secret string) error {
	flag := flags.Lookup(secret)
	if sliceValue, ok := flag.Value.(pflag.SliceValue); ok {
		oldValues := sliceValue.GetSlice()
		values := make([]string, 0, len(oldValues))

		for _, value := range oldValues {
			if value != "" && isFilePath(value) {
				file, err := os.Open(value)
				if err != nil {
					return fmt.Errorf("%w: %w", errOpenFileFailed, err)
				}

				scanner := bufio.NewScanner(file)
				for scanner.Scan() {
					line := scanner.Text()
					if line == "" {
						continue
					}

					values = append(values, line)
				}

				if err := file.Close(); err != nil {
					return fmt.Errorf("%w: %w", errCloseFileFailed, err)
				}
			} else {
				values = append(values, value)
			}
		}

		if err := sliceValue.Replace(values); err != nil {
			return fmt.Errorf("%w: %w", errReplaceSliceFailed, err)
		}

		return nil
	}

	value := flag.Value.String()
	if value != "" && isFilePath(value) {
		content, err := os.ReadFile(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errReadFileFailed, err)
		}

		if err := flags.Set(secret, strings.TrimSpace(string(content))); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	return nil
}

// isFilePath determines if a string likely represents a file path.
// It checks for file existence, avoiding false positives from URLs or invalid Windows paths.
func isFilePath(path string) bool {
	firstColon := strings.IndexRune(path, ':')
	if firstColon != 1 && firstColon != -1 {
		// If ':' exists but isn’t the second character, it’s likely not a file path (e.g., URLs).
		return false
	}

	_, err := os.Stat(path)

	return !errors.Is(err, os.ErrNotExist)
}

// ProcessFlagAliases synchronizes flag values based on helper flags.
// It expands --porcelain into notification settings and --debug/--trace into a log level, exiting on
// invalid configurations.
func ProcessFlagAliases(flags *pflag.FlagSet) {
	porcelain, err := flags.GetString("porcelain")
	if err != nil {
		logrus.Fatalf("Failed to get flag: %v", err)
	}

	if porcelain != "" {
		if porcelain != "v1" {
			logrus.Fatalf("Unknown porcelain version %q. Supported values: \"v1\"", porcelain)
		}

		if err = appendFlagValue(flags, "notification-url", "logger://"); err != nil {
			logrus.Errorf("Failed to set flag: %v", err)
		}

		setFlagIfDefault(flags, "notification-log-stdout", "true")

		tpl := fmt.Sprintf("porcelain.%s.summary", porcelain)
		setFlagIfDefault(flags, "notification-template", tpl)
	}

	if flagIsEnabled(flags, "debug") {
		if err := flags.Set("log-level", "debug"); err != nil {
			logrus.Errorf("Failed to set log-level flag: %v", err)
		}
	}

	if flagIsEnabled(flags, "trace") {
		if err := flags.Set("log-level", "trace"); err != nil {
			logrus.Errorf("Failed to set log-level flag: %v", err)
		}
	}
}

// SetupLogging configures the global logger based on log-related flags.
// It sets the log format and level, returning an error for invalid configurations.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err := configureLogFormat(logFormat, noColor); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetLevel(logLevel)

	return nil
}

// configureLogFormat sets the logrus formatter based on the specified format and color preference.
// It returns an error if the format is invalid.
func configureLogFormat(logFormat string, noColor bool) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

// flagIsEnabled checks if a boolean flag is set to true.
// It exits with a fatal error if the flag is not defined.
func flagIsEnabled(flags *pflag.FlagSet, name string) bool {
	value, err := flags.GetBool(name)
	if err != nil {
		logrus.Fatalf("The flag %q is not defined", name)
	}

	return value
}

// appendFlagValue appends values to a slice-type flag.
// It returns an error if the flag is invalid or not a slice.
func appendFlagValue(flags *pflag.FlagSet, name string, values ...string) error {
	flag := flags.Lookup(name)
	if flag == nil {
		return fmt.Errorf("%w: %q", errInvalidFlagName, name)
	}

	if flagValues, ok := flag.Value.(pflag.SliceValue); ok {
		for _, value := range values {
			if err := flagValues.Append(value); err != nil {
				logrus.Errorf("Failed to append value to flag %q: %v", name, err)
			}
		}
	} else {
		return fmt.Errorf("%w: %q", errNotSliceValue, name)
	}

	return nil
}

// setFlagIfDefault sets a flag’s value if it hasn’t been explicitly changed.
// It logs an error if the set operation fails but continues execution.
func setFlagIfDefault(flags *pflag.FlagSet, name string, value string) {
	if flags.Changed(name) {
		return
	}

	if err := flags.Set(name, value); err != nil {
		logrus.Errorf("Failed to set flag: %v", err)
	}
}
