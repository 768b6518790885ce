// Package baseline loads the set of package identifiers container images are audited against.
//
// Two providers are available: FileProvider reads a newline-delimited list of identifiers, and
// CommandProvider runs a package query inside a reference image through a container runtime. Either is
// loaded exactly once per run, before the audit phase starts.
package baseline
