// Package inventory reads the list of container images to audit.
package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/distribution/reference"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Errors for inventory loading.
var (
	// errReadInventoryFailed indicates the inventory file could not be read.
	errReadInventoryFailed = errors.New("failed to read container inventory")
	// errBlankEntries indicates blank lines between inventory entries.
	errBlankEntries = errors.New("container inventory contains blank entries")
	// errInvalidEntries indicates entries that are not valid image references.
	errInvalidEntries = errors.New("container inventory contains invalid image references")
)

// Load reads a newline-delimited list of container image identifiers.
//
// Surrounding whitespace is stripped from every line and lines starting with "#" are ignored. Blank
// lines between entries and entries that do not parse as image references are rejected with an error
// naming their line numbers. Duplicates are dropped with a warning, keeping the first occurrence.
//
// Parameters:
//   - fs: Filesystem, afero.NewOsFs() outside tests.
//   - path: Path of the inventory file.
//
// Returns:
//   - []string: Unique identifiers in file order.
//   - error: Non-nil if the file cannot be read or contains invalid entries.
func Load(fs afero.Fs, path string) ([]string, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errReadInventoryFailed, err)
	}

	images, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"path":       path,
		"containers": len(images),
	}).Debug("Loaded container inventory")

	return images, nil
}

// Parse validates inventory content. See Load for the rules.
//
// Parameters:
//   - content: Inventory text.
//
// Returns:
//   - []string: Unique identifiers in order.
//   - error: Non-nil naming blank or invalid lines.
func Parse(content string) ([]string, error) {
	var (
		images  []string
		blank   []string
		invalid []string
	)

	seen := map[string]int{}
	number := 0

	// Trailing newlines end the file, they are not blank entries.
	for line := range strings.Lines(strings.TrimRight(content, " \t\r\n")) {
		number++
		entry := strings.TrimSpace(line)

		switch {
		case entry == "":
			blank = append(blank, strconv.Itoa(number))

			continue
		case strings.HasPrefix(entry, "#"):
			continue
		}

		key, err := canonicalName(entry)
		if err != nil {
			invalid = append(invalid, fmt.Sprintf("%d (%s)", number, entry))

			continue
		}

		if first, duplicate := seen[key]; duplicate {
			logrus.WithFields(logrus.Fields{
				"container":  entry,
				"line":       number,
				"first_line": first,
			}).Warn("Ignoring duplicate container in inventory")

			continue
		}

		seen[key] = number
		images = append(images, entry)
	}

	if len(blank) > 0 {
		return nil, fmt.Errorf("%w: line %s", errBlankEntries, strings.Join(blank, ", "))
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: line %s", errInvalidEntries, strings.Join(invalid, ", "))
	}

	return images, nil
}

// Select restricts images to the requested identifiers, keeping inventory order.
//
// Requested identifiers that are not part of the inventory are logged and ignored, so a check can only
// ever touch inventoried images. An empty request selects every image.
//
// Parameters:
//   - images: Loaded inventory.
//   - requested: Identifiers to keep.
//
// Returns:
//   - []string: Selected identifiers.
func Select(images, requested []string) []string {
	if len(requested) == 0 {
		return images
	}

	wanted := make(map[string]string, len(requested))
	for _, image := range requested {
		wanted[selectKey(image)] = image
	}

	selected := make([]string, 0, len(requested))

	for _, image := range images {
		key := selectKey(image)
		if _, ok := wanted[key]; ok {
			selected = append(selected, image)
			delete(wanted, key)
		}
	}

	for _, image := range wanted {
		logrus.WithField("container", image).Warn("Ignoring requested container missing from inventory")
	}

	return selected
}

// canonicalName returns the familiar form of image with the default tag applied, so that "centos",
// "centos:latest" and "docker.io/library/centos" share one key.
func canonicalName(image string) (string, error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", fmt.Errorf("failed to parse image reference %q: %w", image, err)
	}

	return reference.FamiliarString(reference.TagNameOnly(named)), nil
}

// selectKey falls back to the raw identifier when it is not a valid reference.
func selectKey(image string) string {
	if key, err := canonicalName(image); err == nil {
		return key
	}

	return image
}
