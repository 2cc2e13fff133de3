// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Version identifies a binary protocol revision as a (major, minor,
// patch) triple. Versions are immutable values, compared
// lexicographically.
type Version struct {
	Major int16
	Minor int16
	Patch int16
}

// Protocol revisions the channel knows how to speak.
var (
	// Version1_2_0 is the baseline revision.
	Version1_2_0 = Version{1, 2, 0}

	Version1_3_0 = Version{1, 3, 0}

	// Version1_4_0 added partition awareness support.
	Version1_4_0 = Version{1, 4, 0}

	// Version1_5_0 added transaction support.
	Version1_5_0 = Version{1, 5, 0}

	// Version1_6_0 added expiry policy configuration.
	Version1_6_0 = Version{1, 6, 0}

	// Version1_7_0 introduced feature bitmasks.
	Version1_7_0 = Version{1, 7, 0}

	// DefaultVersion is the revision proposed first during handshake.
	DefaultVersion = Version1_7_0
)

// supportedVersions is ordered newest first.
var supportedVersions = []Version{
	Version1_7_0,
	Version1_6_0,
	Version1_5_0,
	Version1_4_0,
	Version1_3_0,
	Version1_2_0,
}

// SupportedVersions returns the versions the channel may negotiate,
// newest first. The caller owns the returned slice.
func SupportedVersions() []Version {
	out := make([]Version, len(supportedVersions))
	copy(out, supportedVersions)
	return out
}

// IsSupported reports whether v may be negotiated.
func IsSupported(v Version) bool {
	for _, s := range supportedVersions {
		if v == s {
			return true
		}
	}
	return false
}

// Compare returns -1, 0 or 1 according to whether v orders before,
// equal to, or after other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return compareInt16(v.Major, other.Major)
	case v.Minor != other.Minor:
		return compareInt16(v.Minor, other.Minor)
	default:
		return compareInt16(v.Patch, other.Patch)
	}
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports value equality with other.
func (v Version) Equal(other Version) bool {
	return v == other
}

// String returns the dotted form, e.g. "1.7.0".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses the dotted form produced by String.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, errors.NotValidf("protocol version %q", s)
	}
	var fields [3]int16
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 16)
		if err != nil || n < 0 {
			return Version{}, errors.NotValidf("protocol version %q", s)
		}
		fields[i] = int16(n)
	}
	return Version{fields[0], fields[1], fields[2]}, nil
}

func compareInt16(a, b int16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
