// Package mocks provides a recording in-memory container runtime for testing the actions package.
package mocks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	cerrdefs "github.com/containerd/errdefs"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

// errNameConflict mimics the daemon refusing a name that is already taken.
var errNameConflict = errors.New("conflict: container name already in use")

// errUnknownImage mimics the daemon failing to find an image.
var errUnknownImage = errors.New("no such image")

// Image configures how the runtime behaves for one image.
type Image struct {
	Packages        []string // Output lines of the list command.
	ListExitCode    int      // Exit status of the list command.
	ListErr         error    // Runtime error for the list command.
	Stderr          string   // Stderr of failing commands.
	UpdateExitCode  int      // Exit status of the update command.
	UpdateErr       error    // Runtime error for the update command.
	CommitErr       error    // Error returned by Commit.
	UpdatedPackages []string // Output lines of the list command once the image was committed.
}

// Runtime is a concurrency-safe types.Runtime recording every call.
type Runtime struct {
	// Delay is added to every CreateAndRun call so concurrency can be observed.
	Delay time.Duration
	// RemoveErrs forces Remove to fail for a name.
	RemoveErrs map[string]error

	mu        sync.Mutex
	images    map[string]Image
	named     map[string]bool
	committed map[string]bool
	runs      []types.RunSpec
	removes   map[string]int
	commits   []string
	inFlight  int
	peak      int
}

// NewRuntime creates a runtime serving the given images.
//
// Parameters:
//   - images: Behavior per image identifier.
//
// Returns:
//   - *Runtime: Runtime with no containers.
func NewRuntime(images map[string]Image) *Runtime {
	return &Runtime{
		RemoveErrs: map[string]error{},
		images:     images,
		named:      map[string]bool{},
		committed:  map[string]bool{},
		removes:    map[string]int{},
	}
}

// Leave pretends a container named name survived an earlier run.
func (r *Runtime) Leave(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.named[name] = true
}

// Name identifies the runtime.
func (r *Runtime) Name() string {
	return "mock"
}

// CreateAndRun emulates running a container of spec.Image.
//
// Named containers stay registered until removed and their names cannot be reused in the meantime.
func (r *Runtime) CreateAndRun(ctx context.Context, spec types.RunSpec) (types.RunResult, error) {
	r.enter()
	defer r.leave()

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs = append(r.runs, spec)

	if err := ctx.Err(); err != nil {
		return types.RunResult{ExitCode: -1}, err
	}

	image, found := r.images[spec.Image]
	if !found {
		return types.RunResult{ExitCode: -1}, fmt.Errorf("%w: %s", errUnknownImage, spec.Image)
	}

	if spec.Name != "" {
		if r.named[spec.Name] {
			return types.RunResult{ExitCode: -1}, fmt.Errorf("%w: %s", errNameConflict, spec.Name)
		}

		r.named[spec.Name] = true
	}

	if spec.AutoRemove {
		return r.list(spec.Image, image)
	}

	if image.UpdateErr != nil {
		return types.RunResult{ExitCode: -1, Stderr: image.Stderr}, image.UpdateErr
	}

	return types.RunResult{ExitCode: image.UpdateExitCode, Stdout: "Complete!\n", Stderr: image.Stderr}, nil
}

// Remove emulates forced removal of a named container. It fails once ctx is done.
func (r *Runtime) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removes[name]++

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.RemoveErrs[name]; err != nil {
		return err
	}

	if !r.named[name] {
		return fmt.Errorf("no such container: %s: %w", name, cerrdefs.ErrNotFound)
	}

	delete(r.named, name)

	return nil
}

// Commit emulates committing a named container over image.
func (r *Runtime) Commit(_ context.Context, name, image, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commits = append(r.commits, name)

	if !r.named[name] {
		return "", fmt.Errorf("no such container: %s: %w", name, cerrdefs.ErrNotFound)
	}

	if err := r.images[image].CommitErr; err != nil {
		return "", err
	}

	r.committed[image] = true

	return imageID(), nil
}

// Runs returns every run spec received, in call order.
func (r *Runtime) Runs() []types.RunSpec {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]types.RunSpec(nil), r.runs...)
}

// Removes returns how often Remove was called for name.
func (r *Runtime) Removes(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removes[name]
}

// Commits returns the names passed to Commit, in call order.
func (r *Runtime) Commits() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.commits...)
}

// Live returns the named containers that still exist.
func (r *Runtime) Live() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.named))
	for name := range r.named {
		names = append(names, name)
	}

	return names
}

// Committed reports whether image was committed.
func (r *Runtime) Committed(image string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.committed[image]
}

// Peak returns the highest number of concurrent CreateAndRun calls observed.
func (r *Runtime) Peak() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.peak
}

// list answers the list command; callers hold the lock.
func (r *Runtime) list(name string, image Image) (types.RunResult, error) {
	if image.ListErr != nil {
		return types.RunResult{ExitCode: -1, Stderr: image.Stderr}, image.ListErr
	}

	packages := image.Packages
	if r.committed[name] && image.UpdatedPackages != nil {
		packages = image.UpdatedPackages
	}

	stdout := strings.Join(packages, "\n")
	if stdout != "" {
		stdout += "\n"
	}

	// A failing list command still reports whatever it printed before exiting.
	return types.RunResult{ExitCode: image.ListExitCode, Stdout: stdout, Stderr: image.Stderr}, nil
}

func (r *Runtime) enter() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inFlight++
	r.peak = max(r.peak, r.inFlight)
}

func (r *Runtime) leave() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inFlight--
}

// imageID returns a random image identifier in the daemon's "sha256:<hex>" form.
func imageID() string {
	digest := make([]byte, 32)
	_, _ = rand.Read(digest)

	return "sha256:" + hex.EncodeToString(digest)
}
