package notifications

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/nicholas-fedor/container-check/pkg/notifications/templates"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// Errors for notification delivery.
var (
	// errInitFailed indicates the shoutrrr router could not be created.
	errInitFailed = errors.New("failed to initialize shoutrrr notifications")
	// errTemplateFailed indicates a notification template could not be parsed or executed.
	errTemplateFailed = errors.New("notification template error")
	// errSendFailed indicates at least one service did not accept the notification.
	errSendFailed = errors.New("failed to send notification")
)

// LocalLog is a logrus entry for notification diagnostics.
var LocalLog = logrus.WithField("notify", "no")

// router defines the interface for sending Shoutrrr notifications.
type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// Config holds the notifier settings.
type Config struct {
	URLs     []string // Shoutrrr service URLs.
	Title    string   // Notification title, GetTitle output when empty.
	Hostname string   // Host shown in the title, os.Hostname when empty.
	Template string   // Template text or the name of a common template, "default" when empty.
	Stdout   bool     // Write shoutrrr diagnostics to stdout instead of the trace log.
}

// Notifier sends run summaries through shoutrrr. It implements types.Notifier.
type Notifier struct {
	urls     []string
	router   router
	template *template.Template
	params   *shoutrrrTypes.Params
	data     StaticData
}

var _ types.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier for the configured services.
//
// Parameters:
//   - config: Notifier settings.
//
// Returns:
//   - *Notifier: Ready notifier.
//   - error: Non-nil if the template or a service URL is invalid.
func NewNotifier(config Config) (*Notifier, error) {
	tpl, err := getShoutrrrTemplate(config.Template)
	if err != nil {
		return nil, err
	}

	var logger shoutrrrTypes.StdLogger
	if config.Stdout {
		logger = log.New(os.Stdout, ``, 0)
	} else {
		logger = log.New(logrus.StandardLogger().WriterLevel(logrus.TraceLevel), "Shoutrrr: ", 0)
	}

	sender, err := shoutrrr.NewSender(logger, config.URLs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInitFailed, err)
	}

	hostname := config.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	title := config.Title
	if title == "" {
		title = GetTitle(hostname)
	}

	params := &shoutrrrTypes.Params{}
	params.SetTitle(title)

	LocalLog.WithFields(logrus.Fields{
		"services": len(config.URLs),
		"title":    title,
	}).Debug("Created notifier")

	return &Notifier{
		urls:     config.URLs,
		router:   sender,
		template: tpl,
		params:   params,
		data:     StaticData{Title: title, Host: hostname},
	}, nil
}

// GetScheme extracts the scheme part of a Shoutrrr URL.
// It returns "invalid" if no scheme is found.
func GetScheme(url string) string {
	schemeEnd := strings.Index(url, ":")
	if schemeEnd <= 0 {
		return "invalid"
	}

	return url[:schemeEnd]
}

// GetTitle formats the notification title for a host.
func GetTitle(hostname string) string {
	if hostname == "" {
		return "container-check report"
	}

	return "container-check report on " + hostname
}

// GetNames returns the notification service names derived from the URLs.
func (n *Notifier) GetNames() []string {
	names := make([]string, len(n.urls))
	for i, u := range n.urls {
		names[i] = GetScheme(u)
	}

	return names
}

// GetURLs returns the configured service URLs.
func (n *Notifier) GetURLs() []string {
	return n.urls
}

// Send renders summary and delivers it to every service.
//
// An empty rendering is not sent.
//
// Parameters:
//   - summary: Finished run.
//
// Returns:
//   - error: Non-nil if rendering failed or any service rejected the message.
func (n *Notifier) Send(summary types.Summary) error {
	msg, err := n.buildMessage(Data{StaticData: n.data, Summary: summary})
	if err != nil {
		return err
	}

	if strings.TrimSpace(msg) == "" {
		LocalLog.Info("Skipping notification due to empty message")

		return nil
	}

	var failures []error

	for i, err := range n.router.Send(msg, n.params) {
		if err == nil {
			continue
		}

		scheme := "unknown"
		if i < len(n.urls) {
			scheme = GetScheme(n.urls[i])
		}

		LocalLog.WithFields(logrus.Fields{
			"service":      scheme,
			"index":        i,
			"failure_type": categorizeError(err),
		}).WithError(err).Error("Failed to send shoutrrr notification")

		failures = append(failures, fmt.Errorf("%s: %w", scheme, err))
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %w", errSendFailed, errors.Join(failures...))
	}

	return nil
}

// buildMessage renders the notification text.
func (n *Notifier) buildMessage(data Data) (string, error) {
	var body bytes.Buffer

	if err := n.template.Execute(&body, data); err != nil {
		return "", fmt.Errorf("%w: %w", errTemplateFailed, err)
	}

	return body.String(), nil
}

// categorizeError classifies delivery errors for log filtering.
func categorizeError(err error) string {
	message := strings.ToLower(err.Error())

	switch {
	case strings.Contains(message, "unauthorized"), strings.Contains(message, "forbidden"):
		return "authentication"
	case strings.Contains(message, "too many requests"), strings.Contains(message, "rate limit"):
		return "rate_limit"
	case strings.Contains(message, "timeout"), strings.Contains(message, "connection"):
		return "network"
	default:
		return "unknown"
	}
}

// getShoutrrrTemplate resolves a common template name or parses tplString.
func getShoutrrrTemplate(tplString string) (*template.Template, error) {
	tplBase := template.New("").Funcs(templates.Funcs)

	if tplString == "" {
		tplString = `default`
	}

	if builtin, found := commonTemplates[tplString]; found {
		logrus.WithField(`template`, tplString).Debug(`Using common template`)
		tplString = builtin
	}

	tpl, err := tplBase.Parse(tplString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateFailed, err)
	}

	return tpl, nil
}
