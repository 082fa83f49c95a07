// Package version provides build version information and semver utilities.
package version

import (
	"github.com/Masterminds/semver/v3"
)

var (
	parsedVersion  *semver.Version
	parseAttempted bool
)

// resetParsedVersion clears the cached parsed version for testing.
func resetParsedVersion() {
	parsedVersion = nil
	parseAttempted = false
}

// Parsed returns the running build's parsed semantic version, or nil if
// unparseable. Computed lazily on first call and cached.
func Parsed() *semver.Version {
	if parsedVersion != nil || parseAttempted {
		return parsedVersion
	}
	parseAttempted = true

	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil
	}
	parsedVersion = v
	return parsedVersion
}

// IsDevBuild reports whether this build carries no valid semver (like "dev").
func IsDevBuild() bool {
	return Parsed() == nil
}

// Compare compares the running version to another version string.
// Returns -1 if current < other, 0 if equal, 1 if current > other.
// Unparseable on either side counts as equal, so dev builds never trip
// version gates.
func Compare(other string) int {
	current := Parsed()
	if current == nil {
		return 0
	}

	otherV, err := semver.NewVersion(other)
	if err != nil {
		return 0
	}

	return current.Compare(otherV)
}

// AtLeast reports whether the running version satisfies the given minimum.
func AtLeast(min string) bool {
	return Compare(min) >= 0
}
