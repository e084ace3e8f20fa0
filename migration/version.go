package migration

import (
	"fmt"
	"github.com/pkg/errors"
	"sort"
	"strconv"
	"strings"
)

var ErrInvalidVersionName = errors.New("invalid version name")

const versionSegments = 3

// Version identifies a migration directory named major.minor.patch
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// ParseVersion parses a directory name such as "1.2.3". All three segments
// must be present and consist of decimal digits only.
func ParseVersion(name string) (Version, error) {
	var v Version

	segments := strings.Split(name, ".")
	if len(segments) != versionSegments {
		return v, errors.Wrapf(ErrInvalidVersionName, "[%s] must have exactly %d segments", name, versionSegments)
	}

	values := make([]uint64, versionSegments)
	for i, s := range segments {
		if !isDigits(s) {
			return v, errors.Wrapf(ErrInvalidVersionName, "[%s] segment [%s] is not a number", name, s)
		}

		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return v, errors.Wrapf(ErrInvalidVersionName, "[%s] segment [%s]: %s", name, s, err.Error())
		}

		values[i] = n
	}

	v.Major, v.Minor, v.Patch = values[0], values[1], values[2]

	return v, nil
}

// MustParseVersion is like ParseVersion but panics on an invalid name
func MustParseVersion(name string) Version {
	v, err := ParseVersion(name)
	if err != nil {
		panic(err)
	}

	return v
}

// OrderKey packs the version as major<<24 | minor<<16 | patch.
// Ordering inside the package relies on Compare, which does not overflow
// when minor or patch outgrow their bits.
func (v Version) OrderKey() uint64 {
	return v.Major<<24 | v.Minor<<16 | v.Patch
}

func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return compareUint(v.Major, other.Major)
	case v.Minor != other.Minor:
		return compareUint(v.Minor, other.Minor)
	default:
		return compareUint(v.Patch, other.Patch)
	}
}

func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

type Versions []Version

func (vs Versions) Len() int {
	return len(vs)
}

func (vs Versions) Less(i, j int) bool {
	return vs[i].Less(vs[j])
}

func (vs Versions) Swap(i, j int) {
	vs[i], vs[j] = vs[j], vs[i]
}

// SortFor orders versions ascending for Up and descending for Down
func (vs Versions) SortFor(d Direction) {
	if d == Down {
		sort.Sort(sort.Reverse(vs))
		return
	}

	sort.Sort(vs)
}

func (vs Versions) Strings() []string {
	result := make([]string, 0, len(vs))
	for i := range vs {
		result = append(result, vs[i].String())
	}
	return result
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func compareUint(a, b uint64) int {
	if a < b {
		return -1
	}

	if a > b {
		return 1
	}

	return 0
}
