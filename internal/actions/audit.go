package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/internal/pool"
	"github.com/nicholas-fedor/container-check/internal/util"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// InspectContainer lists the packages installed in a container image.
//
// The list command runs in a new auto-removed container. Failures never escape as errors or panics:
// a runtime error or non-zero exit produces a record with Succeeded set to false, and the captured
// stderr is logged at error level. A non-zero exit keeps the partial package list it printed.
//
// Parameters:
//   - ctx: Context for the runtime calls.
//   - runtime: Container runtime.
//   - image: Container image identifier.
//   - params: Audit parameters.
//
// Returns:
//   - types.ContainerRecord: Packages in reported order, or the failure details.
func InspectContainer(
	ctx context.Context,
	runtime types.Runtime,
	image string,
	params types.AuditParams,
) types.ContainerRecord {
	clog := loggerOf(params.Logger).WithField("container", image)
	record := types.ContainerRecord{Container: image, ExitCode: -1}

	runCtx, cancel := withTimeout(ctx, params.Timeout)
	defer cancel()

	clog.WithField("command", strings.Join(params.ListCommand, " ")).Debug("Listing installed packages")

	result, err := runtime.CreateAndRun(runCtx, types.RunSpec{
		Image:      image,
		Command:    params.ListCommand,
		AutoRemove: true,
		User:       params.User,
	})
	record.ExitCode = result.ExitCode
	record.Stderr = result.Stderr

	if err != nil {
		record.Err = fmt.Errorf("%w: %w", errInspectionFailed, err)

		clog.WithError(err).WithField("stderr", strings.TrimSpace(result.Stderr)).
			Error("Failed to list installed packages")

		return record
	}

	record.Packages = packageIDs(result.Stdout)

	if result.ExitCode != 0 {
		record.Err = fmt.Errorf("%w: exit code %d", errInspectionFailed, result.ExitCode)

		clog.WithFields(logrus.Fields{
			"exit_code": result.ExitCode,
			"stderr":    strings.TrimSpace(result.Stderr),
			"packages":  len(record.Packages),
		}).Error("Failed to list installed packages")

		return record
	}

	record.Succeeded = true

	clog.WithField("packages", len(record.Packages)).Debug("Listed installed packages")

	return record
}

// packageIDs splits list command output into package identifiers.
func packageIDs(stdout string) []types.PackageID {
	lines := util.SplitLines(stdout)

	ids := make([]types.PackageID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, types.PackageID(line))
	}

	return ids
}

// Audit inspects every image and diffs the successful records against the baseline.
//
// Every image is inspected, even after failures. The records of failed inspections are kept in the
// result but never contribute to the stale report.
//
// Parameters:
//   - ctx: Context for the runtime calls.
//   - runtime: Container runtime.
//   - images: Container image identifiers, expected to be unique.
//   - baseline: Known-good package set.
//   - params: Audit parameters.
//
// Returns:
//   - types.AuditResult: Records, stale report and failed containers.
func Audit(
	ctx context.Context,
	runtime types.Runtime,
	images []string,
	baseline types.BaselineSet,
	params types.AuditParams,
) types.AuditResult {
	log := loggerOf(params.Logger)
	start := time.Now()

	log.WithFields(logrus.Fields{
		"containers": len(images),
		"baseline":   baseline.Len(),
		"workers":    pool.Size(params.Workers, len(images)),
	}).Info("Starting package audit")

	records := pool.Map(ctx, params.Workers, images, func(ctx context.Context, image string) types.ContainerRecord {
		return InspectContainer(ctx, runtime, image, params)
	})

	result := types.AuditResult{
		Records:   make(map[string]types.ContainerRecord, len(records)),
		Stale:     Diff(records, baseline),
		Failed:    []string{},
		Succeeded: true,
	}

	for _, record := range records {
		result.Records[record.Container] = record

		if !record.Succeeded {
			result.Failed = append(result.Failed, record.Container)
			result.Succeeded = false
		}
	}

	fields := logrus.Fields{
		"containers": len(records),
		"stale":      len(result.Stale),
		"failed":     len(result.Failed),
		"duration":   util.FormatDuration(time.Since(start)),
	}

	if !result.Succeeded {
		log.WithFields(fields).WithField("failed_containers", result.Failed).
			Error("Package audit finished with inspection failures")
	} else {
		log.WithFields(fields).Info("Package audit finished")
	}

	return result
}

// Diff computes the stale packages of every successful record.
//
// Packages absent from the baseline are collected per container in the order they were reported.
// Failed records are ignored and containers without stale packages are left out of the report.
//
// Parameters:
//   - records: Audit records.
//   - baseline: Known-good package set.
//
// Returns:
//   - types.StaleReport: Sparse map of container identifier to stale packages.
func Diff(records []types.ContainerRecord, baseline types.BaselineSet) types.StaleReport {
	stale := types.StaleReport{}

	for _, record := range records {
		if !record.Succeeded {
			continue
		}

		for _, pkg := range record.Packages {
			if strings.TrimSpace(string(pkg)) == "" || baseline.Contains(pkg) {
				continue
			}

			stale[record.Container] = append(stale[record.Container], pkg)
		}
	}

	return stale
}

// loggerOf returns logger, or the standard logger when nil.
func loggerOf(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return logrus.StandardLogger()
	}

	return logger
}

// withTimeout bounds ctx by timeout when it is positive.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
