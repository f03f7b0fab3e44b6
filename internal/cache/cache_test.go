package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagwright/dockertag/internal/tag"
)

func TestMemoryTierRoundTrip(t *testing.T) {
	c := New("", zerolog.Nop())
	_, ok := c.Get("library/alpine")
	assert.False(t, ok)

	tags := []tag.Tag{tag.Parse("3.19"), tag.Parse("3.20")}
	c.Put("library/alpine", tags)

	got, ok := c.Get("library/alpine")
	require.True(t, ok)
	assert.Equal(t, tags, got)
}

func TestDiskTierRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, zerolog.Nop())

	tags := []tag.Tag{tag.Parse("3.19"), tag.Parse("3.20")}
	c.Put("library/alpine", tags)

	assert.FileExists(t, filepath.Join(dir, "library-alpine.json"))

	fresh := New(dir, zerolog.Nop())
	got, ok := fresh.LoadFromDisk("library/alpine")
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestDiskTierExpiresAfterTTL(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, zerolog.Nop())
	c.Put("library/alpine", []tag.Tag{tag.Parse("3.19")})

	path := filepath.Join(dir, "library-alpine.json")
	old := time.Now().Add(-2 * TTL)
	require.NoError(t, os.Chtimes(path, old, old))

	_, ok := c.LoadFromDisk("library/alpine")
	assert.False(t, ok)
}

func TestDiskTierDisabledWhenDirEmpty(t *testing.T) {
	c := New("", zerolog.Nop())
	c.Put("library/alpine", []tag.Tag{tag.Parse("3.19")})
	_, ok := c.LoadFromDisk("library/alpine")
	assert.False(t, ok)
}

func TestLoadFromDiskMissingFile(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, zerolog.Nop())
	_, ok := c.LoadFromDisk("library/does-not-exist")
	assert.False(t, ok)
}
