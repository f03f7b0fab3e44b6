package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdaptTagsFiltersSortsDedupes(t *testing.T) {
	names := []string{"3.19", "latest", "3.18", "3.19", "not-a-version-!!", "3.20-alpine"}
	got := adaptTags(names)

	var rendered []string
	for _, tg := range got {
		rendered = append(rendered, tg.String())
	}
	assert.Equal(t, []string{"3.18", "3.19", "3.20-alpine", "latest"}, rendered)
}

func TestAdaptTagsDropsNoise(t *testing.T) {
	got := adaptTags([]string{"", "!!!"})
	assert.Empty(t, got)
}

func TestFilterDockerHubByArch(t *testing.T) {
	results := []dockerHubResult{
		{Name: "3.19", Images: []dockerHubImg{{Architecture: "amd64"}}},
		{Name: "3.18", Images: []dockerHubImg{{Architecture: "arm64"}}},
	}
	assert.Equal(t, []string{"3.19"}, filterDockerHubByArch(results, "amd64"))
	assert.Equal(t, []string{"3.19", "3.18"}, filterDockerHubByArch(results, ""))
}

func TestFilterMcrByArch(t *testing.T) {
	amd64 := "amd64"
	entries := []mcrEntry{
		{Name: "9.0.0", Architecture: &amd64},
		{Name: "8.0.0", Architecture: nil},
	}
	assert.Equal(t, []string{"9.0.0"}, filterMcrByArch(entries, "amd64"))
	assert.Equal(t, []string{"9.0.0", "8.0.0"}, filterMcrByArch(entries, ""))
}

func TestNormalizeArch(t *testing.T) {
	assert.Equal(t, "", normalizeArch(""))
	assert.Equal(t, "amd64", normalizeArch("x86_64"))
	assert.Equal(t, "arm64", normalizeArch("aarch64"))
}
