package tag

import (
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyImage names a blank image reference. Nothing in this package
// returns it: Tag parsing never fails (see Parse).
var ErrEmptyImage = errors.New("image name is empty")

// Tag is the tuple (major?, minor?, patch?, variant?, allowed_missing,
// latest). AllowedMissing marks a reference that resolved to a prior
// build-stage alias (e.g. `FROM base`) rather than a real tag; Latest marks
// the reserved literal "latest".
type Tag struct {
	Major          *int     `json:"major"`
	Minor          *int     `json:"minor"`
	Patch          *int     `json:"patch"`
	Variant        *Variant `json:"variant"`
	AllowedMissing bool     `json:"allowed_missing"`
	Latest         bool     `json:"latest"`
}

// AllowedMissingTag returns the synthesized tag used for stage-alias
// references (no ':' present in the image string).
func AllowedMissingTag() Tag {
	return Tag{AllowedMissing: true}
}

// Parse parses the substring after the last ':' in an image reference, or a
// standalone tag string. An empty input yields the zero tag, not an error.
func Parse(s string) Tag {
	if strings.EqualFold(strings.TrimSpace(s), "latest") {
		return Tag{Latest: true}
	}

	parts := strings.SplitN(s, "-", 2)
	versionPart := parts[0]
	versionNums := strings.Split(versionPart, ".")

	t := Tag{}
	if len(versionNums) > 0 {
		if n, err := strconv.Atoi(versionNums[0]); err == nil {
			t.Major = intPtr(n)
		}
	}
	if len(versionNums) > 1 {
		if n, err := strconv.Atoi(versionNums[1]); err == nil {
			t.Minor = intPtr(n)
		}
	}
	if len(versionNums) > 2 {
		if n, err := strconv.Atoi(versionNums[2]); err == nil {
			t.Patch = intPtr(n)
		}
	}

	if len(parts) > 1 {
		t.Variant = ParseVariant(parts[1])
	}

	return t
}

// String renders the tag. "latest" renders verbatim; otherwise present
// numeric components are joined with '.', a '-' separates the version from
// the variant only when a numeric component is also present, and the variant
// renders itself.
func (t Tag) String() string {
	if t.Latest {
		return "latest"
	}

	var b strings.Builder
	if t.Major != nil {
		b.WriteString(itoa(*t.Major))
	}
	if t.Minor != nil {
		b.WriteByte('.')
		b.WriteString(itoa(*t.Minor))
	}
	if t.Patch != nil {
		b.WriteByte('.')
		b.WriteString(itoa(*t.Patch))
	}
	if t.Variant != nil {
		if t.Major != nil {
			b.WriteByte('-')
		}
		b.WriteString(t.Variant.String())
	}
	return b.String()
}

// Equal reports deep equality between two tags.
func (t Tag) Equal(o Tag) bool {
	return intPtrEqual(t.Major, o.Major) &&
		intPtrEqual(t.Minor, o.Minor) &&
		intPtrEqual(t.Patch, o.Patch) &&
		t.Variant.Equal(o.Variant) &&
		t.AllowedMissing == o.AllowedMissing &&
		t.Latest == o.Latest
}

// IsSameMajor reports whether both tags carry a major component and they're equal.
func (t Tag) IsSameMajor(o Tag) bool { return intPtrEqual2(t.Major, o.Major) }

// IsSameMinor reports whether both tags carry a minor component and they're equal.
func (t Tag) IsSameMinor(o Tag) bool { return intPtrEqual2(t.Minor, o.Minor) }

// HasPatch reports whether the patch component is present.
func (t Tag) HasPatch() bool { return t.Patch != nil }

// IsSameVariant reports whether both variants are absent, or both are
// present with equal prefix and suffix. Affixes are deliberately excluded —
// they participate in ordering but not in variant equality (see the design
// notes on variant_bump below).
func (t Tag) IsSameVariant(o Tag) bool {
	switch {
	case t.Variant == nil && o.Variant == nil:
		return true
	case t.Variant == nil || o.Variant == nil:
		return false
	default:
		return t.Variant.IsSamePrefix(o.Variant) && t.Variant.IsSameSuffix(o.Variant)
	}
}

// IsNextMajor reports whether o's major is strictly greater than t's and o
// carries a patch component.
func (t Tag) IsNextMajor(o Tag) bool {
	return o.HasPatch() && intPtrLess(t.Major, o.Major)
}

// IsNextMinor reports whether t and o share a major and o's minor is
// strictly greater.
func (t Tag) IsNextMinor(o Tag) bool {
	return t.IsSameMajor(o) && intPtrLess(t.Minor, o.Minor)
}

// IsNextPatch reports whether t and o share a minor, both carry a patch
// component, and either o's patch is strictly greater, or the variant was
// bumped (equal prefix and a strictly greater variant major, or a strictly
// greater variant minor, or patch). A missing patch on either side gives
// false even when the variant was bumped.
func (t Tag) IsNextPatch(o Tag) bool {
	if !t.IsSameMinor(o) {
		return false
	}
	if t.Patch == nil || o.Patch == nil {
		return false
	}
	if *t.Patch < *o.Patch {
		return true
	}
	if t.Variant == nil || o.Variant == nil {
		return false
	}
	return (t.Variant.IsSamePrefix(o.Variant) && t.Variant.IsNextMajor(o.Variant)) ||
		t.Variant.IsNextMinor(o.Variant) ||
		t.Variant.IsNextPatch(o.Variant)
}

// Compare orders tags by (latest, major, minor, patch, variant), with
// absent ordering before present. "latest" sorts after every other tag.
func (t Tag) Compare(o Tag) int {
	if t.Latest != o.Latest {
		if t.Latest {
			return 1
		}
		return -1
	}
	if c := compareIntPtr(t.Major, o.Major); c != 0 {
		return c
	}
	if c := compareIntPtr(t.Minor, o.Minor); c != 0 {
		return c
	}
	if c := compareIntPtr(t.Patch, o.Patch); c != 0 {
		return c
	}
	return t.Variant.Compare(o.Variant)
}

// Less reports whether t orders before o, for use with sort.Slice.
func (t Tag) Less(o Tag) bool { return t.Compare(o) < 0 }

func intPtrEqual2(a, b *int) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
