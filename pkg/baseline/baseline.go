package baseline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nicholas-fedor/container-check/internal/util"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// Errors for baseline loading.
var (
	// errReadBaselineFailed indicates the baseline file could not be read.
	errReadBaselineFailed = errors.New("failed to read baseline file")
	// errQueryBaselineFailed indicates the baseline query could not run or exited non-zero.
	errQueryBaselineFailed = errors.New("failed to query baseline packages")
	// errEmptyBaseline indicates a baseline without any package.
	errEmptyBaseline = errors.New("baseline contains no packages")
)

// Provider produces the baseline package set.
type Provider interface {
	Load(ctx context.Context) (types.BaselineSet, error)
	Describe() string
}

// FileProvider reads a newline-delimited list of package identifiers.
//
// Lines are trimmed; blank lines and lines starting with "#" are ignored.
type FileProvider struct {
	fs   afero.Fs
	path string
}

// NewFileProvider creates a provider reading path from fs.
//
// Parameters:
//   - fs: Filesystem, afero.NewOsFs() outside tests.
//   - path: Path of the package list.
//
// Returns:
//   - *FileProvider: Provider for path.
func NewFileProvider(fs afero.Fs, path string) *FileProvider {
	return &FileProvider{fs: fs, path: path}
}

// Describe names the source of the baseline.
func (p *FileProvider) Describe() string {
	return "file " + p.path
}

// Load reads the baseline file.
//
// Returns:
//   - types.BaselineSet: Identifiers listed in the file.
//   - error: Non-nil if the file cannot be read or lists no packages.
func (p *FileProvider) Load(_ context.Context) (types.BaselineSet, error) {
	content, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errReadBaselineFailed, err)
	}

	set := parse(string(content))
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", errEmptyBaseline, p.path)
	}

	logrus.WithFields(logrus.Fields{
		"path":     p.path,
		"packages": set.Len(),
	}).Debug("Loaded baseline from file")

	return set, nil
}

// CommandProvider runs a package query inside a reference image.
//
// The query sees the same repository configuration as update transactions, so the baseline reflects
// exactly what an update would install.
type CommandProvider struct {
	runtime types.Runtime
	spec    types.RunSpec
}

// NewCommandProvider creates a provider running command in image.
//
// Parameters:
//   - runtime: Container runtime.
//   - image: Reference image with the package manager.
//   - command: Query printing one available package per line.
//   - mounts: Repository configuration mounts.
//   - networkMode: Network mode for the query container.
//   - user: User to run the query as.
//
// Returns:
//   - *CommandProvider: Provider for the query.
func NewCommandProvider(
	runtime types.Runtime,
	image string,
	command []string,
	mounts []types.Mount,
	networkMode, user string,
) *CommandProvider {
	return &CommandProvider{
		runtime: runtime,
		spec: types.RunSpec{
			Image:       image,
			Command:     command,
			AutoRemove:  true,
			Mounts:      mounts,
			NetworkMode: networkMode,
			User:        user,
		},
	}
}

// Describe names the source of the baseline.
func (p *CommandProvider) Describe() string {
	return "query in " + p.spec.Image
}

// Load runs the query and parses its output.
//
// Parameters:
//   - ctx: Context for the runtime call.
//
// Returns:
//   - types.BaselineSet: Identifiers printed by the query.
//   - error: Non-nil if the query fails or prints no packages.
func (p *CommandProvider) Load(ctx context.Context) (types.BaselineSet, error) {
	clog := logrus.WithFields(logrus.Fields{
		"image":   p.spec.Image,
		"command": strings.Join(p.spec.Command, " "),
	})

	clog.Info("Querying baseline packages")

	result, err := p.runtime.CreateAndRun(ctx, p.spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errQueryBaselineFailed, err)
	}

	if result.ExitCode != 0 {
		clog.WithFields(logrus.Fields{
			"exit_code": result.ExitCode,
			"stderr":    strings.TrimSpace(result.Stderr),
		}).Error("Baseline query failed")

		return nil, fmt.Errorf("%w: exit code %d", errQueryBaselineFailed, result.ExitCode)
	}

	set := parse(result.Stdout)
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: query in %s", errEmptyBaseline, p.spec.Image)
	}

	clog.WithField("packages", set.Len()).Debug("Loaded baseline from query")

	return set, nil
}

// Fingerprint returns a stable hash of the baseline contents, independent of load order.
//
// Parameters:
//   - set: Baseline to hash.
//
// Returns:
//   - string: 16 hex digits.
func Fingerprint(set types.BaselineSet) string {
	digest := xxhash.New()

	for _, id := range set.Sorted() {
		_, _ = digest.WriteString(string(id))
		_, _ = digest.WriteString("\n")
	}

	return fmt.Sprintf("%016x", digest.Sum64())
}

// parse turns package list output into a set, skipping comments.
func parse(content string) types.BaselineSet {
	lines := util.SplitLines(content)
	ids := make([]types.PackageID, 0, len(lines))

	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}

		ids = append(ids, types.PackageID(line))
	}

	return types.NewBaselineSet(ids)
}

// Summary formats a one-line description of a loaded baseline for startup logging.
func Summary(provider Provider, set types.BaselineSet) string {
	return provider.Describe() + ", " + strconv.Itoa(set.Len()) + " packages, fingerprint " + Fingerprint(set)
}
