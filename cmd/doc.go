// Package cmd contains the command-line interface definitions and execution logic for container-check.
// It provides the root command, which loads the container inventory and the package baseline, runs the
// audit and update phases, and reports the outcome through logs, report files, metrics and notifications.
//
// Key components:
//   - rootCmd: Root command for single and scheduled runs.
//   - runMain: Selects the run mode and maps the outcome to an exit code.
//
// Usage example:
//
//	cmd.Execute()
package cmd
