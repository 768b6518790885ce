package types

import "slices"

// PackageID is an opaque installed-package token such as "bash-5.1.8-9.el9.x86_64".
//
// It is compared as a whole and never split into name, version, release or architecture.
type PackageID string

// BaselineSet is the set of package identifiers considered current.
//
// It is built once per run and only read afterwards, so it is shared between workers without locking.
type BaselineSet map[PackageID]struct{}

// NewBaselineSet builds a BaselineSet from a list of identifiers, skipping blank entries.
//
// Parameters:
//   - ids: Package identifiers to include.
//
// Returns:
//   - BaselineSet: The resulting set.
func NewBaselineSet(ids []PackageID) BaselineSet {
	set := make(BaselineSet, len(ids))

	for _, id := range ids {
		if id == "" {
			continue
		}

		set[id] = struct{}{}
	}

	return set
}

// Contains reports whether the identifier is part of the baseline.
func (b BaselineSet) Contains(id PackageID) bool {
	_, ok := b[id]

	return ok
}

// Len returns the number of identifiers in the baseline.
func (b BaselineSet) Len() int {
	return len(b)
}

// Sorted returns the identifiers in lexical order.
//
// Returns:
//   - []PackageID: Sorted copy of the set members.
func (b BaselineSet) Sorted() []PackageID {
	ids := make([]PackageID, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
