// Package wheel models built wheel filenames.
//
// A wheel filename carries five dash-separated fields:
// distribution, version, build tag, python tag, and abi/platform tags,
// e.g. pkg-1.0-py3-none-any.whl (the optional build tag collapses into the
// version field position when absent). Tag rewriting must only ever touch the
// python tag field.
package wheel

import (
	"fmt"
	"strings"
)

// Extension is the filename extension of a built wheel.
const Extension = ".whl"

// minNameParts is the minimum number of dash-separated fields in a valid
// wheel filename (distribution, version, python tag, abi tag, platform tag).
const minNameParts = 5

// IsWheelName reports whether filename looks like a wheel filename.
func IsWheelName(filename string) bool {
	if !strings.HasSuffix(filename, Extension) {
		return false
	}
	base := strings.TrimSuffix(filename, Extension)
	return len(strings.Split(base, "-")) >= minNameParts
}

// ReplacePythonTag replaces the python tag field of a wheel filename with a
// new value, leaving every other field intact. The python tag is the
// third-from-last dash-separated field.
func ReplacePythonTag(wheelName, newTag string) (string, error) {
	parts := strings.Split(wheelName, "-")
	if len(parts) < minNameParts {
		return "", fmt.Errorf("malformed wheel filename %q: expected at least %d dash-separated fields, got %d",
			wheelName, minNameParts, len(parts))
	}
	parts[len(parts)-3] = newTag
	return strings.Join(parts, "-"), nil
}
