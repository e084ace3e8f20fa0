package migration

import (
	"github.com/pkg/errors"
	"strings"
)

var ErrInvalidRange = errors.New("invalid version range")

const rangeSeparator = "^"

// Range restricts a run to the versions between First and Last inclusive.
// Either bound may be nil, which leaves that side open. For a Down run
// First is the bound closer to HEAD, so First >= Last.
type Range struct {
	First *Version
	Last  *Version
}

// ParseRange parses "<first>^<last>". An empty string is an unbounded range.
func ParseRange(raw string) (Range, error) {
	var r Range

	if raw == "" {
		return r, nil
	}

	if strings.Count(raw, rangeSeparator) != 1 {
		return r, errors.Wrapf(ErrInvalidRange, "[%s] must contain exactly one [%s]", raw, rangeSeparator)
	}

	parts := strings.SplitN(raw, rangeSeparator, 2)

	first, err := parseBound(parts[0])
	if err != nil {
		return r, errors.Wrapf(err, "range [%s]", raw)
	}

	last, err := parseBound(parts[1])
	if err != nil {
		return r, errors.Wrapf(err, "range [%s]", raw)
	}

	r.First, r.Last = first, last

	return r, nil
}

func NewRange(first, last Version) Range {
	return Range{First: &first, Last: &last}
}

func (r Range) IsBounded() bool {
	return r.First != nil || r.Last != nil
}

// Validate checks that the bounds point in the same direction as the run
func (r Range) Validate(d Direction) error {
	if r.First == nil || r.Last == nil {
		return nil
	}

	switch d {
	case Up:
		if r.Last.Less(*r.First) {
			return errors.Wrapf(ErrInvalidRange, "%s > %s", r.First, r.Last)
		}
	case Down:
		if r.First.Less(*r.Last) {
			return errors.Wrapf(ErrInvalidRange, "%s < %s", r.First, r.Last)
		}
	default:
		return errors.Wrapf(ErrInvalidDirection, "[%s]", d)
	}

	return nil
}

// Contains reports whether v takes part in a run going in direction d
func (r Range) Contains(d Direction, v Version) bool {
	if d == Down {
		if r.First != nil && r.First.Less(v) {
			return false
		}

		if r.Last != nil && v.Less(*r.Last) {
			return false
		}

		return true
	}

	if r.First != nil && v.Less(*r.First) {
		return false
	}

	if r.Last != nil && r.Last.Less(v) {
		return false
	}

	return true
}

func (r Range) String() string {
	if !r.IsBounded() {
		return ""
	}

	var b strings.Builder
	if r.First != nil {
		b.WriteString(r.First.String())
	}
	b.WriteString(rangeSeparator)
	if r.Last != nil {
		b.WriteString(r.Last.String())
	}

	return b.String()
}

func parseBound(s string) (*Version, error) {
	if s == "" {
		return nil, nil
	}

	v, err := ParseVersion(s)
	if err != nil {
		return nil, err
	}

	return &v, nil
}
