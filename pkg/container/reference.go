package container

import (
	"fmt"

	"github.com/distribution/reference"
)

// CommitReference normalizes an image identifier into the reference a commit should tag.
//
// Untagged names get the "latest" tag, matching what a runtime would have pulled. Digest-pinned
// references are rejected because a commit cannot move a digest.
//
// Parameters:
//   - image: Image identifier as listed in the inventory.
//
// Returns:
//   - string: Familiar reference such as "centos:7".
//   - error: Non-nil if the identifier cannot be parsed or is pinned by digest.
func CommitReference(image string) (string, error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", errInvalidImageReference, image, err)
	}

	if _, pinned := named.(reference.Canonical); pinned {
		return "", fmt.Errorf("%w: %s", errPinnedImage, image)
	}

	return reference.FamiliarString(reference.TagNameOnly(named)), nil
}
