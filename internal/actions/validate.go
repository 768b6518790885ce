package actions

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

// containerNamePattern matches names Docker accepts for containers.
var containerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateParams rejects audit and update parameters that would make every worker fail.
//
// It checks that both commands are set, that transaction names built from the prefix are valid
// container names and that every mount uses absolute paths.
//
// Parameters:
//   - audit: Audit parameters.
//   - update: Update parameters.
//
// Returns:
//   - error: Non-nil describing the first invalid parameter.
func ValidateParams(audit types.AuditParams, update types.UpdateParams) error {
	logrus.Debug("Validating audit and update parameters")

	if len(audit.ListCommand) == 0 {
		return fmt.Errorf("%w: list command", errMissingCommand)
	}

	if len(update.UpdateCommand) == 0 {
		return fmt.Errorf("%w: update command", errMissingCommand)
	}

	// The counter suffix makes an empty prefix valid.
	if update.TransactionPrefix != "" && !containerNamePattern.MatchString(update.TransactionPrefix+"0") {
		return fmt.Errorf("%w: %q", errInvalidTransactionPrefix, update.TransactionPrefix)
	}

	for _, mount := range update.Mounts {
		if !filepath.IsAbs(mount.Source) || !filepath.IsAbs(mount.Target) {
			logrus.WithFields(logrus.Fields{
				"source": mount.Source,
				"target": mount.Target,
			}).Debug("Rejected relative mount")

			return fmt.Errorf("%w: %s:%s", errRelativeMount, mount.Source, mount.Target)
		}
	}

	return nil
}
