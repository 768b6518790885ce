// Package check provides the HTTP API handler that triggers container-check runs on demand.
//
// Key components:
//   - Handler: Runs a full or targeted check per POST request.
//   - New: Creates a handler sharing the scheduler's lock.
//
// Usage example:
//
//	handler := check.New(runFn, lock)
//	server.RegisterFunc(handler.Path, handler.Handle)
package check
