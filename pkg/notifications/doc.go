// Package notifications sends container-check run summaries through shoutrrr services.
//
// Key components:
//   - Notifier: Renders a summary with a template and delivers it (shoutrrr.go).
//   - Common templates: Built-in renderings selectable by name (common_templates.go).
//   - JSON marshaling: Formats notification data for the json.v1 template (json.go).
//
// Usage example:
//
//	notifier, err := notifications.NewNotifier(notifications.Config{URLs: urls})
//	if err != nil {
//	    logrus.WithError(err).Fatal("Invalid notification configuration")
//	}
//	_ = notifier.Send(report)
package notifications
