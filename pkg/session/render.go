package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format selects the report rendering.
type Format string

// Format values.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// errUnknownFormat indicates an unsupported report format.
var errUnknownFormat = errors.New("unknown report format")

// ParseFormat validates a report format name.
//
// Parameters:
//   - name: Format name, case-insensitive.
//
// Returns:
//   - Format: Parsed format.
//   - error: Non-nil for unknown names.
func ParseFormat(name string) (Format, error) {
	switch format := Format(strings.ToLower(strings.TrimSpace(name))); format {
	case FormatText, FormatJSON, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownFormat, name)
	}
}

// Document is the machine-readable form of a report.
type Document struct {
	RunID      string              `json:"run_id"      yaml:"run_id"`
	StartedAt  time.Time           `json:"started_at"  yaml:"started_at"`
	FinishedAt time.Time           `json:"finished_at" yaml:"finished_at"`
	Runtime    string              `json:"runtime"     yaml:"runtime"`
	Workers    int                 `json:"workers"     yaml:"workers"`
	Baseline   BaselineDocument    `json:"baseline"    yaml:"baseline"`
	Succeeded  bool                `json:"succeeded"   yaml:"succeeded"`
	Containers []ContainerDocument `json:"containers"  yaml:"containers"`
}

// BaselineDocument describes the baseline a run was diffed against.
type BaselineDocument struct {
	Packages    int    `json:"packages"              yaml:"packages"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// ContainerDocument is the machine-readable form of a container status.
type ContainerDocument struct {
	Container         string   `json:"container"                    yaml:"container"`
	State             string   `json:"state"                        yaml:"state"`
	StalePackages     []string `json:"stale_packages,omitempty"     yaml:"stale_packages,omitempty"`
	Transaction       string   `json:"transaction,omitempty"        yaml:"transaction,omitempty"`
	FailedStep        string   `json:"failed_step,omitempty"        yaml:"failed_step,omitempty"`
	ImageID           string   `json:"image_id,omitempty"           yaml:"image_id,omitempty"`
	Error             string   `json:"error,omitempty"              yaml:"error,omitempty"`
	Verified          bool     `json:"verified,omitempty"           yaml:"verified,omitempty"`
	RemainingPackages []string `json:"remaining_packages,omitempty" yaml:"remaining_packages,omitempty"`
}

// Document converts the report to its machine-readable form.
func (r *Report) Document() Document {
	doc := Document{
		RunID:      r.meta.RunID,
		StartedAt:  r.meta.StartedAt,
		FinishedAt: r.meta.FinishedAt,
		Runtime:    r.meta.Runtime,
		Workers:    r.meta.Workers,
		Baseline: BaselineDocument{
			Packages:    r.meta.BaselineSize,
			Fingerprint: r.meta.BaselineFingerprint,
		},
		Succeeded:  r.Succeeded(),
		Containers: make([]ContainerDocument, 0, len(r.statuses)),
	}

	for _, status := range r.statuses {
		container := ContainerDocument{
			Container:         status.container,
			State:             status.state.String(),
			StalePackages:     packageStrings(status.stale),
			Transaction:       status.transaction,
			ImageID:           status.imageID,
			Error:             status.Error(),
			Verified:          status.verified,
			RemainingPackages: packageStrings(status.remaining),
		}

		if status.state == UpdateFailedState {
			container.FailedStep = status.failure.String()
		}

		if container.Error == "" {
			container.Error = status.VerifyError()
		}

		doc.Containers = append(doc.Containers, container)
	}

	return doc
}

// Write renders the report to w.
//
// Parameters:
//   - w: Destination.
//   - format: Rendering to use.
//
// Returns:
//   - error: Non-nil if encoding or writing fails.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(r.Document()); err != nil {
			return fmt.Errorf("failed to encode JSON report: %w", err)
		}

		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(r.Document()); err != nil {
			return fmt.Errorf("failed to encode YAML report: %w", err)
		}

		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML report: %w", err)
		}

		return nil
	case FormatText:
		return r.writeText(w)
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, string(format))
	}
}

// writeText renders one line per container followed by its indented stale packages.
func (r *Report) writeText(w io.Writer) error {
	var builder strings.Builder

	for _, status := range r.statuses {
		fmt.Fprintf(&builder, "%s: %s", status.container, status.state)

		if status.transaction != "" {
			fmt.Fprintf(&builder, " (%s)", status.transaction)
		}

		if message := status.Error(); message != "" {
			fmt.Fprintf(&builder, ": %s", message)
		}

		builder.WriteString("\n")

		for _, pkg := range status.stale {
			fmt.Fprintf(&builder, "  rpm: %s\n", pkg)
		}

		for _, pkg := range status.remaining {
			fmt.Fprintf(&builder, "  still stale: %s\n", pkg)
		}
	}

	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	return nil
}

// packageStrings converts package identifiers for encoding.
func packageStrings[T ~string](pkgs []T) []string {
	if len(pkgs) == 0 {
		return nil
	}

	result := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		result = append(result, string(pkg))
	}

	return result
}
