package types

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditParams configures the audit phase.
type AuditParams struct {
	Workers     int                // Pool size; values below one mean the logical CPU count.
	ListCommand []string           // Command that prints one installed package per line.
	User        string             // User to run the list command as.
	Timeout     time.Duration      // Per-container deadline, zero for none.
	Logger      logrus.FieldLogger // Logger, nil for the standard logger.
}

// UpdateParams configures the update phase.
type UpdateParams struct {
	Workers           int                // Pool size; values below one mean the logical CPU count.
	UpdateCommand     []string           // Command that updates packages in place.
	CommitMessage     string             // Annotation stored on committed images.
	TransactionPrefix string             // Prefix of the transient container names.
	Mounts            []Mount            // Repository configuration mounts.
	NetworkMode       string             // Network mode for update containers.
	User              string             // User to run the update command as.
	Timeout           time.Duration      // Per-container deadline, zero for none.
	Logger            logrus.FieldLogger // Logger, nil for the standard logger.
}
