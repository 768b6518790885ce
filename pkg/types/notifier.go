package types

// Notifier sends a summary of a finished run to external services.
type Notifier interface {
	Send(summary Summary) error // Deliver the summary.
	GetNames() []string         // Service names.
	GetURLs() []string          // Service URLs.
}

// Summary is the notifier-facing view of a run.
type Summary interface {
	RunID() string
	Audited() int
	InspectionFailures() []string
	StaleContainers() map[string][]PackageID
	UpdatedContainers() []string
	FailedUpdates() []string
	Succeeded() bool
}
