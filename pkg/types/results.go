package types

import "slices"

// AuditResult is the folded outcome of the audit phase.
type AuditResult struct {
	Records   map[string]ContainerRecord // Every inspected container, failed ones included.
	Stale     StaleReport                // Stale packages per successfully inspected container.
	Failed    []string                   // Containers whose inspection failed, in inventory order.
	Succeeded bool                       // False if any inspection failed.
}

// UpdateTask is one unit of work for the update phase.
type UpdateTask struct {
	Container   string // Container image identifier to update and recommit.
	Transaction string // Reserved name of the transient update container.
}

// UpdateResult is the folded outcome of the update phase.
type UpdateResult struct {
	Outcomes  map[string]UpdateOutcome // Outcome per container identifier.
	Failed    []string                 // Containers whose transaction failed, sorted.
	Succeeded bool                     // AND over every outcome; true for an empty phase.
}

// Updated returns the containers whose transaction succeeded, sorted.
func (r UpdateResult) Updated() []string {
	updated := make([]string, 0, len(r.Outcomes))
	for _, outcome := range r.Outcomes {
		if outcome.Succeeded {
			updated = append(updated, outcome.Container)
		}
	}

	slices.Sort(updated)

	return updated
}
