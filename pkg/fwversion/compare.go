// Package fwversion implements ordering of firmware version strings as
// they are reported by weather gateways and written in the firmware catalog,
// for example "V2.3.2", "v1.7.7" or "V3.0.0beta1".
package fwversion

import (
	"fmt"
	"strings"
)

// Ordering is the result of comparing two version strings.
type Ordering int

const (
	// Less means the first version is older than the second one.
	Less = Ordering(-1)

	// Equal means both versions denote the same release.
	Equal = Ordering(0)

	// Greater means the first version is newer than the second one.
	Greater = Ordering(1)
)

// String implements fmt.Stringer.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	}
	return fmt.Sprintf("unknown_ordering_%d", int(o))
}

// Compare compares two version strings.
//
// A leading "V" or "v" is ignored. The rest is split into segments on
// '.', '-', '_', '+' and on every boundary between digits and letters
// ("2.3rc1" is "2", "3", "rc", "1"). Segments are compared left to right,
// a missing trailing segment is considered to be the number zero (thus
// "V2.3" equals "V2.3.0").
//
// Numeric segments are compared by their value. Textual segments are
// pre-release or post-release tags and are ordered as:
//
//	<unknown word> < dev < alpha == a < beta == b < rc < <any number> < pl == p
func Compare(a, b string) Ordering {
	segsA := split(a)
	segsB := split(b)

	count := len(segsA)
	if len(segsB) > count {
		count = len(segsB)
	}

	for idx := 0; idx < count; idx++ {
		segA, segB := zeroSegment, zeroSegment
		if idx < len(segsA) {
			segA = segsA[idx]
		}
		if idx < len(segsB) {
			segB = segsB[idx]
		}
		if r := compareSegments(segA, segB); r != Equal {
			return r
		}
	}
	return Equal
}

// IsLess returns true if version a is older than version b.
func IsLess(a, b string) bool {
	return Compare(a, b) == Less
}

// IsEqual returns true if both strings denote the same version
// (for example "V2.3" and "v2.3.0").
func IsEqual(a, b string) bool {
	return Compare(a, b) == Equal
}

type segment struct {
	numeric bool
	value   string
}

var zeroSegment = segment{numeric: true, value: "0"}

func split(version string) []segment {
	version = strings.TrimSpace(version)
	if len(version) > 0 && (version[0] == 'V' || version[0] == 'v') {
		version = version[1:]
	}

	var (
		result  []segment
		current strings.Builder
		numeric bool
	)
	flush := func() {
		if current.Len() == 0 {
			return
		}
		result = append(result, segment{numeric: numeric, value: current.String()})
		current.Reset()
	}

	for _, r := range version {
		switch {
		case r == '.' || r == '-' || r == '_' || r == '+':
			flush()
			continue
		case r >= '0' && r <= '9':
			if current.Len() > 0 && !numeric {
				flush()
			}
			numeric = true
		default:
			if current.Len() > 0 && numeric {
				flush()
			}
			numeric = false
		}
		current.WriteRune(r)
	}
	flush()

	return result
}

const numberRank = 5

func tagRank(tag string) int {
	switch strings.ToLower(tag) {
	case "dev":
		return 1
	case "alpha", "a":
		return 2
	case "beta", "b":
		return 3
	case "rc":
		return 4
	case "pl", "p":
		return 6
	}
	return 0
}

func compareSegments(a, b segment) Ordering {
	if a.numeric && b.numeric {
		return compareNumbers(a.value, b.value)
	}

	rankA, rankB := numberRank, numberRank
	if !a.numeric {
		rankA = tagRank(a.value)
	}
	if !b.numeric {
		rankB = tagRank(b.value)
	}
	switch {
	case rankA < rankB:
		return Less
	case rankA > rankB:
		return Greater
	}
	return Equal
}

// compareNumbers compares decimal digit strings of arbitrary length.
func compareNumbers(a, b string) Ordering {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return Less
	case len(a) > len(b):
		return Greater
	}
	switch strings.Compare(a, b) {
	case -1:
		return Less
	case 1:
		return Greater
	}
	return Equal
}
