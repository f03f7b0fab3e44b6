// Package tag models container image tags and their post-dash variant
// qualifiers, providing parsing, rendering, and the directional predicates
// the upgrade selector relies on.
package tag

import "strings"

// Variant captures the post-`-` qualifier of a tag, built from the
// components (prefix)(major)(affix)(minor)(affix)(patch)(suffix).
type Variant struct {
	Prefix  *string  `json:"prefix"`
	Major   *int     `json:"major"`
	Minor   *int     `json:"minor"`
	Patch   *int     `json:"patch"`
	Affixes []string `json:"affixes"`
	Suffix  *string  `json:"suffix"`
}

// Equal reports deep equality, used by tests and by Tag.Equal.
func (v *Variant) Equal(o *Variant) bool {
	if v == nil || o == nil {
		return v == o
	}
	if !strPtrEqual(v.Prefix, o.Prefix) || !strPtrEqual(v.Suffix, o.Suffix) {
		return false
	}
	if !intPtrEqual(v.Major, o.Major) || !intPtrEqual(v.Minor, o.Minor) || !intPtrEqual(v.Patch, o.Patch) {
		return false
	}
	if len(v.Affixes) != len(o.Affixes) {
		return false
	}
	for i := range v.Affixes {
		if v.Affixes[i] != o.Affixes[i] {
			return false
		}
	}
	return true
}

// String renders the variant: prefix, then major, then for each subsequent
// numeric component the matching affix (or "." when none was recorded), then
// suffix.
func (v *Variant) String() string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	if v.Prefix != nil {
		b.WriteString(*v.Prefix)
	}
	if v.Major != nil {
		writeInt(&b, *v.Major)
	}
	if v.Minor != nil {
		if len(v.Affixes) == 0 {
			b.WriteByte('.')
		} else {
			b.WriteString(v.Affixes[0])
		}
		writeInt(&b, *v.Minor)
	}
	if v.Patch != nil {
		if len(v.Affixes) < 2 {
			b.WriteByte('.')
		} else {
			b.WriteString(v.Affixes[1])
		}
		writeInt(&b, *v.Patch)
	}
	if v.Suffix != nil {
		b.WriteString(*v.Suffix)
	}
	return b.String()
}

// ParseVariant parses a variant string using the alternating digit/non-digit
// walk described in the tag grammar: the first non-digit run becomes the
// prefix, subsequent digit runs fill major/minor/patch in order, non-digit
// runs between two digit runs are collected as affixes, and a final non-digit
// run starting with '-' or '_' becomes the suffix (otherwise it is the last
// affix). A run of affixes consisting only of "." is cleared, since "." is
// the implicit default separator.
func ParseVariant(s string) *Variant {
	v := &Variant{}

	current := s

	prefixEnd := 0
	for prefixEnd < len(current) && !isDigit(current[prefixEnd]) {
		prefixEnd++
	}
	if prefixEnd > 0 {
		prefix := current[:prefixEnd]
		v.Prefix = &prefix
		current = current[prefixEnd:]
	}

	var versionParts []int
	for len(current) > 0 {
		affixEnd := 0
		for affixEnd < len(current) && !isDigit(current[affixEnd]) {
			affixEnd++
		}
		if affixEnd > 0 {
			part := current[:affixEnd]
			if affixEnd == len(current) && (strings.HasPrefix(part, "-") || strings.HasPrefix(part, "_")) {
				v.Suffix = &part
			} else {
				v.Affixes = append(v.Affixes, part)
			}
			current = current[affixEnd:]
		}

		numEnd := 0
		for numEnd < len(current) && isDigit(current[numEnd]) {
			numEnd++
		}
		if numEnd > 0 {
			if n, ok := parseUint(current[:numEnd]); ok {
				versionParts = append(versionParts, n)
			}
			current = current[numEnd:]
		}
	}

	if len(versionParts) > 0 {
		v.Major = &versionParts[0]
	}
	if len(versionParts) > 1 {
		v.Minor = &versionParts[1]
	}
	if len(versionParts) > 2 {
		v.Patch = &versionParts[2]
	}

	allDots := true
	for _, a := range v.Affixes {
		if a != "." {
			allDots = false
			break
		}
	}
	if allDots {
		v.Affixes = nil
	}

	return v
}

// IsSamePrefix reports whether the prefixes match; both absent counts as a match.
func (v *Variant) IsSamePrefix(o *Variant) bool {
	return strPtrEqual(v.Prefix, o.Prefix)
}

// IsSameSuffix reports whether the suffixes match; both absent counts as a match.
func (v *Variant) IsSameSuffix(o *Variant) bool {
	return strPtrEqual(v.Suffix, o.Suffix)
}

// IsSameAffix reports whether the affix lists are identical. Not used by
// Tag's same-variant comparison (which only checks prefix/suffix), but kept
// for callers that need a stricter comparison.
func (v *Variant) IsSameAffix(o *Variant) bool {
	if len(v.Affixes) != len(o.Affixes) {
		return false
	}
	for i := range v.Affixes {
		if v.Affixes[i] != o.Affixes[i] {
			return false
		}
	}
	return true
}

// IsNextMajor reports whether o's major component is strictly greater than v's.
func (v *Variant) IsNextMajor(o *Variant) bool {
	return intPtrLess(v.Major, o.Major)
}

// IsNextMinor reports whether o's minor component is strictly greater than v's.
func (v *Variant) IsNextMinor(o *Variant) bool {
	return intPtrLess(v.Minor, o.Minor)
}

// IsNextPatch reports whether o's patch component is strictly greater than v's.
func (v *Variant) IsNextPatch(o *Variant) bool {
	return intPtrLess(v.Patch, o.Patch)
}

// Compare orders variants by (prefix, major, minor, patch, affixes, suffix)
// with absent ordering before present, matching the tag's total ordering.
func (v *Variant) Compare(o *Variant) int {
	if v == nil && o == nil {
		return 0
	}
	if v == nil {
		return -1
	}
	if o == nil {
		return 1
	}
	if c := compareStrPtr(v.Prefix, o.Prefix); c != 0 {
		return c
	}
	if c := compareIntPtr(v.Major, o.Major); c != 0 {
		return c
	}
	if c := compareIntPtr(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := compareIntPtr(v.Patch, o.Patch); c != 0 {
		return c
	}
	if c := compareStrSlice(v.Affixes, o.Affixes); c != 0 {
		return c
	}
	return compareStrPtr(v.Suffix, o.Suffix)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func parseUint(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func writeInt(b *strings.Builder, n int) {
	b.WriteString(itoa(n))
}
