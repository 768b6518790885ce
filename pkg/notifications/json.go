package notifications

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

var _ json.Marshaler = &Data{}

// jsonMap is a type alias for a JSON-compatible map.
type jsonMap = map[string]any

// MarshalJSON implements json.Marshaler for Data.
//
// Returns:
//   - []byte: JSON-encoded data.
//   - error: Non-nil if marshaling fails, nil on success.
func (d Data) MarshalJSON() ([]byte, error) {
	clog := logrus.WithFields(logrus.Fields{
		"title": d.Title,
		"host":  d.Host,
	})
	clog.Debug("Marshaling notification data to JSON")

	var report jsonMap

	if d.Summary != nil {
		report = jsonMap{
			"run_id":              d.Summary.RunID(),
			"audited":             d.Summary.Audited(),
			"stale":               staleMap(d.Summary.StaleContainers()),
			"updated":             d.Summary.UpdatedContainers(),
			"failed_updates":      d.Summary.FailedUpdates(),
			"inspection_failures": d.Summary.InspectionFailures(),
			"succeeded":           d.Summary.Succeeded(),
		}
	}

	data := jsonMap{
		"title":  d.Title,
		"host":   d.Host,
		"report": report,
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		clog.WithError(err).Debug("Failed to marshal notification data")

		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}

	return bytes, nil
}

// staleMap converts stale packages to plain strings.
func staleMap(stale map[string][]types.PackageID) map[string][]string {
	result := make(map[string][]string, len(stale))

	for name, pkgs := range stale {
		entries := make([]string, len(pkgs))
		for i, pkg := range pkgs {
			entries[i] = string(pkg)
		}

		result[name] = entries
	}

	return result
}
