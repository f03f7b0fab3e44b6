package orchestrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagwright/dockertag/internal/image"
	"github.com/tagwright/dockertag/internal/tag"
)

func TestIsIgnored(t *testing.T) {
	alpine, err := image.Parse("alpine:3.19")
	require.NoError(t, err)
	nginx, err := image.Parse("nginx:1.26.1")
	require.NoError(t, err)

	assert.True(t, isIgnored(alpine, []image.Image{alpine}))
	assert.False(t, isIgnored(nginx, []image.Image{alpine}))
	assert.False(t, isIgnored(alpine, nil))
}

func TestFilterExcludedGlob(t *testing.T) {
	paths := []string{
		"services/api/Dockerfile",
		"services/worker/Dockerfile",
		"vendor/thirdparty/Dockerfile",
	}
	got := filterExcluded(paths, []string{"vendor/**"})
	assert.ElementsMatch(t, []string{"services/api/Dockerfile", "services/worker/Dockerfile"}, got)
}

func TestFilterExcludedSuffixFallback(t *testing.T) {
	paths := []string{"a/Dockerfile", "b/Dockerfile.test"}
	got := filterExcluded(paths, []string{"Dockerfile.test"})
	assert.Equal(t, []string{"a/Dockerfile"}, got)
}

func TestSortedCopyDoesNotMutateInput(t *testing.T) {
	original := []tag.Tag{tag.Parse("3.20"), tag.Parse("3.19")}
	got := sortedCopy(original)

	assert.Equal(t, "3.20", original[0].String())
	assert.Equal(t, "3.19", got[0].String())
	assert.Equal(t, "3.20", got[1].String())
}
