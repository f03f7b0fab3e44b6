package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Registry.TagSearchLimit, cfg.Registry.TagSearchLimit)
	assert.Equal(t, "latest", cfg.Defaults.Strategy)
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[defaults]\nstrategy = \"next-minor\"\narch = \"amd64\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "next-minor", cfg.Defaults.Strategy)
	assert.Equal(t, "amd64", cfg.Defaults.Arch)
	// Untouched sections keep their hardcoded defaults.
	assert.Equal(t, DefaultConfig().Registry.TagSearchLimit, cfg.Registry.TagSearchLimit)
	assert.Equal(t, DefaultConfig().Progress.ListenAddr, cfg.Progress.ListenAddr)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Defaults.Strategy = "next-major"
	cfg.Git.AuthorName = "dockertag-bot"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "next-major", loaded.Defaults.Strategy)
	assert.Equal(t, "dockertag-bot", loaded.Git.AuthorName)
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/etc/dockertag", expandHome("/etc/dockertag"))
	assert.NotEqual(t, "~/.cache/dockertag", expandHome("~/.cache/dockertag"))
}

