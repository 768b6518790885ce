// Package util provides small helpers shared by container-check packages.
// It includes tools for splitting command output and command lines, and formatting durations for logs
// and notifications.
//
// Key components:
//   - SplitLines: Splits command output into trimmed, non-blank lines.
//   - SplitCommand: Splits a configured command line into arguments.
//   - FormatDuration: Renders a duration as "1 hour, 2 minutes, 3 seconds".
//
// Usage example:
//
//	packages := util.SplitLines(result.Stdout)
//	command := util.SplitCommand("yum -y update")
//	logrus.Info("Run finished in " + util.FormatDuration(elapsed))
package util
