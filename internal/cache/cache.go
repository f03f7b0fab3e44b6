// Package cache implements the two-tier tag cache (C5): a process-wide
// in-memory map guarded by a read/write lock, mirrored to a per-repository
// JSON file on disk with a 1-hour freshness window.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tagwright/dockertag/internal/tag"
)

// TTL is the freshness window for the on-disk mirror.
const TTL = time.Hour

// Cache holds tag lists for repositories, keyed by full name (`group/name`).
// It is constructed explicitly per-process (or per-test) rather than as a
// package-level singleton, so callers can isolate and reset state between
// test cases.
type Cache struct {
	mu  sync.RWMutex
	m   map[string][]tag.Tag
	dir string
	log zerolog.Logger
}

// New constructs a Cache whose disk mirror lives under dir. An empty dir
// disables the disk tier (memory-only).
func New(dir string, log zerolog.Logger) *Cache {
	return &Cache{m: make(map[string][]tag.Tag), dir: dir, log: log}
}

// Get returns the cached tags for fullName and whether an entry was found.
// It never performs I/O while holding the lock.
func (c *Cache) Get(fullName string) ([]tag.Tag, bool) {
	c.mu.RLock()
	tags, ok := c.m[fullName]
	c.mu.RUnlock()
	if ok {
		return append([]tag.Tag(nil), tags...), true
	}
	return nil, false
}

// Put stores tags for fullName in memory, then best-effort mirrors them to
// disk. The disk write happens after the lock is released, and a failure is
// logged but never fatal.
func (c *Cache) Put(fullName string, tags []tag.Tag) {
	clone := append([]tag.Tag(nil), tags...)

	c.mu.Lock()
	c.m[fullName] = clone
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	if err := c.writeDisk(fullName, clone); err != nil {
		c.log.Warn().Err(err).Str("repository", fullName).Msg("failed to write tag cache file")
	}
}

// LoadFromDisk checks the on-disk snapshot for fullName: if present and its
// modification time is within TTL, it parses and populates the memory tier,
// returning the tags. A missing or stale file is not an error — the caller
// should fetch fresh.
func (c *Cache) LoadFromDisk(fullName string) ([]tag.Tag, bool) {
	if c.dir == "" {
		return nil, false
	}

	path := c.diskPath(fullName)
	info, err := os.Stat(path)
	if err != nil {
		c.log.Info().Str("repository", fullName).Msg("no cache file exists, fetching from registry")
		return nil, false
	}

	if time.Since(info.ModTime()) >= TTL {
		c.log.Info().Str("repository", fullName).Msg("cache file is older than the freshness window, fetching new data")
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var tags []tag.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		c.log.Error().Err(err).Msg("could not read tags from cache file")
		return nil, false
	}

	c.mu.Lock()
	c.m[fullName] = tags
	c.mu.Unlock()

	return append([]tag.Tag(nil), tags...), true
}

func (c *Cache) writeDisk(fullName string, tags []tag.Tag) error {
	sorted := append([]tag.Tag(nil), tags...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.diskPath(fullName), data, 0o644)
}

// diskPath maps a repository full name to its JSON snapshot path, replacing
// '/' with '-' (e.g. "library/node" -> "library-node.json").
func (c *Cache) diskPath(fullName string) string {
	return filepath.Join(c.dir, strings.ReplaceAll(fullName, "/", "-")+".json")
}
