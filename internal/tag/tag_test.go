package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"1.29.3-alpine3.22-slim",
		"24.6.0-trixie-slim",
		"13.1-slim",
		"1.5.1-11_base",
		"24",
		"24.0.0-alpine3.22",
		"24.0-alpine3.21.1",
		"",
		"9.1.1-debian-13-r8",
		"10.0.1-azurelinux3.0-amd64",
	}
	for _, s := range cases {
		got := Parse(s)
		assert.Equal(t, s, got.String(), "round trip for %q", s)
	}
}

func TestParseFields(t *testing.T) {
	got := Parse("1.29.3-alpine3.22-slim")
	require.NotNil(t, got.Variant)
	assert.Equal(t, 1, *got.Major)
	assert.Equal(t, 29, *got.Minor)
	assert.Equal(t, 3, *got.Patch)
	assert.Equal(t, "alpine", *got.Variant.Prefix)
	assert.Equal(t, 3, *got.Variant.Major)
	assert.Equal(t, 22, *got.Variant.Minor)
	assert.Equal(t, "-slim", *got.Variant.Suffix)

	got = Parse("24.6.0-trixie-slim")
	assert.Equal(t, "trixie-slim", *got.Variant.Prefix)
	assert.Nil(t, got.Variant.Major)

	got = Parse("1.5.1-11_base")
	assert.Nil(t, got.Variant.Prefix)
	assert.Equal(t, 11, *got.Variant.Major)
	assert.Nil(t, got.Variant.Minor)
	assert.Equal(t, "_base", *got.Variant.Suffix)

	got = Parse("24")
	assert.Equal(t, 24, *got.Major)
	assert.Nil(t, got.Minor)
	assert.Nil(t, got.Variant)

	got = Parse("24.0.0-alpine3.22")
	assert.Equal(t, &Variant{Prefix: strp("alpine"), Major: intp(3), Minor: intp(22)}, got.Variant)

	got = Parse("24.0-alpine3.21.1")
	assert.Equal(t, &Variant{Prefix: strp("alpine"), Major: intp(3), Minor: intp(21), Patch: intp(1)}, got.Variant)

	empty := Parse("")
	assert.Equal(t, Tag{}, empty)

	got = Parse("9.1.1-debian-13-r8")
	assert.Equal(t, "debian-", *got.Variant.Prefix)
	assert.Equal(t, 13, *got.Variant.Major)

	got = Parse("10.0.1-azurelinux3.0-amd64")
	assert.Equal(t, "azurelinux", *got.Variant.Prefix)
	assert.Equal(t, 3, *got.Variant.Major)
	assert.Equal(t, 0, *got.Variant.Minor)
	require.Len(t, got.Variant.Affixes, 2)
	assert.Equal(t, "-amd", got.Variant.Affixes[1])
	assert.Equal(t, 64, *got.Variant.Patch)
}

func TestComparing(t *testing.T) {
	current := Parse("1.29.3-alpine3.22-slim")
	next := Parse("1.29.3-alpine3.22")
	assert.True(t, current.IsSameMajor(next))
	assert.True(t, current.IsSameMinor(next))
	assert.False(t, current.IsSameVariant(next))

	current = Parse("1.29.3-alpine3.22-slim")
	next = Parse("1.29.3-alpine3.23")
	assert.False(t, current.IsNextMajor(next))
	assert.False(t, current.IsNextMinor(next))
	assert.True(t, current.IsNextPatch(next))

	current = Parse("1.29.3-alpine3.22-slim")
	next = Parse("1.29.3-alpine4.1")
	assert.False(t, current.IsNextMajor(next))
	assert.False(t, current.IsNextMinor(next))
	assert.True(t, current.IsNextPatch(next))

	current = Parse("0.28.2-alpine3.22-slim")
	next = Parse("1.29.3-alpine3.22")
	assert.True(t, current.IsNextMajor(next))
	assert.False(t, current.IsNextMinor(next))

	current = Parse("1.5.1-11_base")
	next = Parse("1.5.1-14_base")
	assert.True(t, current.IsSameVariant(next))

	current = Parse("1.5.1-bookworm-11_base")
	next = Parse("1.5.1-bookworm-14_base")
	assert.True(t, current.IsSameVariant(next))

	current = Parse("24.12.0-bookworm-slim")
	next = Parse("24.12.0-trixie-slim")
	assert.False(t, current.IsSameVariant(next))

	current = Parse("1.29.3-alpine3.22.1")
	next = Parse("1.29.3-alpine4.0.0")
	assert.True(t, current.IsNextPatch(next))

	current = Parse("1.29.3-alpine3.22.1")
	next = Parse("1.29.3-alpine3.23.0")
	assert.True(t, current.IsNextPatch(next))

	current = Parse("1.29.3-alpine3.22.1")
	next = Parse("1.29.3-alpine3.22.2")
	assert.True(t, current.IsNextPatch(next))
}

func TestNextPatch(t *testing.T) {
	cases := []struct {
		current, next string
		expect        bool
	}{
		{"2.5.0", "2.5.01", true},
		{"2.5.0", "2.5.0", false},
		{"2.6.9-bookworm-slim", "2.6.10-bookworm-slim", true},
		{"9.0.1-debian-12-r8", "9.0.1-debian-12-r9", true},
		{"9.0.1-debian-12-r8", "9.0.1-debian-13-r8", true},
		{"1.5.1-11_base", "1.5", false},
		{"1.5.1-11_base", "1.5.1-10_base", false},
	}
	for _, c := range cases {
		got := Parse(c.current).IsNextPatch(Parse(c.next))
		assert.Equal(t, c.expect, got, "IsNextPatch(%s, %s)", c.current, c.next)
	}
}

func TestNextMinor(t *testing.T) {
	cases := []struct {
		current, next string
		expect        bool
	}{
		{"2.5.0", "2.6.0", true},
		{"2.5.7", "2.6.9", true},
		{"2.6.9-bookworm-slim", "2.7.0-bookworm-slim", true},
		{"9.0.1-debian-12-r8", "9.1.0-debian-12-r9", true},
		{"9.0.1-debian-12-r8", "9.1.0-debian-13-r8", true},
		{"9.0-debian-12-r8", "9.1-debian-13-r8", true},
		{"1.4.9-11_base", "1.5.1-14_base", true},
		{"2.6.9", "2.6.10", false},
		{"2.6.9", "3.6.10", false},
		{"2.6.9-bookworm-slim", "3.6.10-bookworm-slim", false},
		{"2.6.9-bookworm-slim", "2.6.8-bookworm-slim", false},
		{"2.6.9-bookworm-slim", "2.6.10-bookwork-slim", false},
		{"1.5.1-11_base", "1.5", false},
	}
	for _, c := range cases {
		got := Parse(c.current).IsNextMinor(Parse(c.next))
		assert.Equal(t, c.expect, got, "IsNextMinor(%s, %s)", c.current, c.next)
	}
}

func TestNextMajor(t *testing.T) {
	cases := []struct {
		current, next string
		expect        bool
	}{
		{"2.5.7", "3.0.0", true},
		{"2.6.9-bookworm-slim", "3.6.10-bookworm-slim", true},
		{"8.0.1-debian-12-r8", "9.0.1-debian-12-r8", true},
		{"2.6.9", "2.7.9", false},
	}
	for _, c := range cases {
		got := Parse(c.current).IsNextMajor(Parse(c.next))
		assert.Equal(t, c.expect, got, "IsNextMajor(%s, %s)", c.current, c.next)
	}
}

func TestLatestTag(t *testing.T) {
	got := Parse("latest")
	assert.True(t, got.Latest)
	assert.Equal(t, "latest", got.String())

	got = Parse("LATEST")
	assert.True(t, got.Latest)
}

func TestAllowedMissingTag(t *testing.T) {
	got := AllowedMissingTag()
	assert.True(t, got.AllowedMissing)
	assert.Equal(t, "", got.String())
}
