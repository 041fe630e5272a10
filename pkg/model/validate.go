package model

import (
	"regexp"
)

const maxNameLength = 128

// Segment, sensor, branch and tag names: leading alphanumeric, then
// word characters, hyphens and dots. Slashes are reserved for archive
// path layout.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-.]*$`)

// CheckName validates a user-supplied name for segments, sensors,
// branches and tags
func CheckName(name string) error {
	if name == "" {
		return ErrInvalidName.WrapMessage("name is required")
	}
	if len(name) > maxNameLength {
		return ErrInvalidName.WrapMessage("name %q exceeds %d characters", name, maxNameLength)
	}
	if !nameRe.MatchString(name) {
		return ErrInvalidName.WrapMessage("name %q contains invalid characters", name)
	}
	return nil
}
