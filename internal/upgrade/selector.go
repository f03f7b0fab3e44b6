package upgrade

import (
	"sort"

	"github.com/tagwright/dockertag/internal/tag"
)

// FindCandidate filters tagList to tags sharing current's variant, applies
// the strategy predicate, sorts ascending, and returns the first match for
// Next* strategies or the last match for Latest*/Latest. It returns false
// when nothing matches.
func FindCandidate(current tag.Tag, tagList []tag.Tag, strategy Strategy) (tag.Tag, bool) {
	predicate := predicateFor(strategy)

	var filtered []tag.Tag
	for _, candidate := range tagList {
		if current.IsSameVariant(candidate) && predicate(current, candidate) {
			filtered = append(filtered, candidate)
		}
	}

	if len(filtered) == 0 {
		return tag.Tag{}, false
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Less(filtered[j]) })

	if strategy.IsLatestFamily() {
		return filtered[len(filtered)-1], true
	}
	return filtered[0], true
}

func predicateFor(strategy Strategy) func(current, candidate tag.Tag) bool {
	switch strategy {
	case NextMinor, LatestMinor:
		return tag.Tag.IsNextMinor
	case NextMajor, LatestMajor:
		return tag.Tag.IsNextMajor
	case NextPatch, LatestPatch:
		return tag.Tag.IsNextPatch
	default: // Latest
		return func(current, candidate tag.Tag) bool {
			return current.IsNextMajor(candidate) || current.IsNextMinor(candidate) || current.IsNextPatch(candidate)
		}
	}
}
