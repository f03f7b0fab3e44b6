package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagwright/dockertag/internal/tag"
)

func parseAll(ss ...string) []tag.Tag {
	out := make([]tag.Tag, len(ss))
	for i, s := range ss {
		out[i] = tag.Parse(s)
	}
	return out
}

func TestFindCandidateStrategies(t *testing.T) {
	current := tag.Parse("3.19.0")
	candidates := parseAll("3.19.1", "3.19.2", "3.20.0", "4.0.0")

	cases := []struct {
		strategy Strategy
		expect   string
	}{
		{NextPatch, "3.19.1"},
		{LatestPatch, "3.19.2"},
		{NextMinor, "3.20.0"},
		{LatestMinor, "3.20.0"},
		{NextMajor, "4.0.0"},
		{LatestMajor, "4.0.0"},
		{Latest, "4.0.0"},
	}
	for _, c := range cases {
		found, ok := FindCandidate(current, candidates, c.strategy)
		require.True(t, ok, "strategy %s", c.strategy)
		assert.Equal(t, c.expect, found.String(), "strategy %s", c.strategy)
	}
}

func TestFindCandidateNoMatch(t *testing.T) {
	current := tag.Parse("3.19.0")
	_, ok := FindCandidate(current, parseAll("3.19.0", "2.0.0"), NextMajor)
	assert.False(t, ok)
}

func TestFindCandidateVariantMismatchExcluded(t *testing.T) {
	current := tag.Parse("1.29.3-alpine3.22")
	candidates := parseAll("1.29.4-bookworm", "1.29.4-alpine3.22")
	found, ok := FindCandidate(current, candidates, NextPatch)
	require.True(t, ok)
	assert.Equal(t, "1.29.4-alpine3.22", found.String())
}

func TestParseStrategy(t *testing.T) {
	got, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Latest, got)

	got, err = ParseStrategy("next-minor")
	require.NoError(t, err)
	assert.Equal(t, NextMinor, got)

	_, err = ParseStrategy("not-a-strategy")
	assert.Error(t, err)
}

func TestStrategyIsLatestFamily(t *testing.T) {
	assert.True(t, Latest.IsLatestFamily())
	assert.True(t, LatestMajor.IsLatestFamily())
	assert.False(t, NextMajor.IsLatestFamily())
}
