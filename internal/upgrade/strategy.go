// Package upgrade implements the upgrade selector (C6): given a current tag,
// a list of candidate tags, and a strategy, it picks the best successor.
package upgrade

import "fmt"

// Strategy is the directional policy used to pick a successor tag.
type Strategy string

const (
	Latest      Strategy = "latest"
	NextPatch   Strategy = "next-patch"
	LatestPatch Strategy = "latest-patch"
	NextMinor   Strategy = "next-minor"
	LatestMinor Strategy = "latest-minor"
	NextMajor   Strategy = "next-major"
	LatestMajor Strategy = "latest-major"
)

// AllStrategies lists every strategy, in the order Overview mode reports
// them.
var AllStrategies = []Strategy{Latest, NextPatch, LatestPatch, NextMinor, LatestMinor, NextMajor, LatestMajor}

// ParseStrategy parses a kebab-case strategy name, defaulting to Latest for
// an empty string. It returns an error for anything else unrecognized.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return Latest, nil
	}
	switch Strategy(s) {
	case Latest, NextPatch, LatestPatch, NextMinor, LatestMinor, NextMajor, LatestMajor:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s)
	}
}

// String renders the strategy in a human-readable (space separated) form,
// used in log and overview output, distinct from the kebab-case CLI value.
func (s Strategy) String() string {
	switch s {
	case NextPatch:
		return "next patch"
	case LatestPatch:
		return "latest patch"
	case NextMinor:
		return "next minor"
	case LatestMinor:
		return "latest minor"
	case NextMajor:
		return "next major"
	case LatestMajor:
		return "latest major"
	default:
		return "latest"
	}
}

// IsLatestFamily reports whether the strategy should pick the last
// (as opposed to the first) ascending match.
func (s Strategy) IsLatestFamily() bool {
	switch s {
	case LatestMajor, LatestMinor, LatestPatch, Latest:
		return true
	default:
		return false
	}
}
