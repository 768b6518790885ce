package types

import "slices"

// ContainerRecord is the result of inspecting one container image.
//
// It is created by a single audit worker and handed to the coordinator by value; nothing mutates it
// afterwards.
type ContainerRecord struct {
	Container string      // Container image identifier as listed in the inventory.
	Packages  []PackageID // Installed packages in the order reported by the package manager.
	Succeeded bool        // Whether the list command ran and exited zero.
	ExitCode  int         // Exit status of the list command, -1 if it never ran.
	Stderr    string      // Captured diagnostic stream.
	Err       error       // Runtime error, if the command could not be run at all.
}

// StaleReport maps a container identifier to the packages it has installed that are absent from the
// baseline.
//
// The map is sparse: containers without stale packages are never present as keys.
type StaleReport map[string][]PackageID

// Containers returns the stale container identifiers in lexical order.
//
// Returns:
//   - []string: Sorted container identifiers.
func (s StaleReport) Containers() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// PackageCount returns the total number of stale package entries across all containers.
func (s StaleReport) PackageCount() int {
	total := 0
	for _, pkgs := range s {
		total += len(pkgs)
	}

	return total
}
