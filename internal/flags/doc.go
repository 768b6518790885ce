// Package flags manages command-line flags and environment variables for container-check configuration.
// It registers the Docker connection, run and notification flags via Cobra and binds each of them to a
// CONTAINER_CHECK_ prefixed environment variable via Viper.
//
// Key components:
//   - RegisterDockerFlags: Adds Docker API client flags.
//   - RegisterSystemFlags: Adds input, execution, transaction, output and logging flags.
//   - RegisterNotificationFlags: Adds notification settings.
//   - ReadRunConfig and Validate: Turn parsed flags into a checked types.RunConfig.
//   - SetupLogging: Configures logrus based on flags.
//
// Usage example:
//
//	cmd := &cobra.Command{}
//	flags.SetDefaults()
//	flags.RegisterSystemFlags(cmd)
//	err := flags.SetupLogging(cmd.PersistentFlags())
//	if err != nil {
//	    logrus.WithError(err).Fatal("Logging setup failed")
//	}
package flags
