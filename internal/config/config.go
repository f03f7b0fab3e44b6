// Package config loads the TOML configuration schema: registry limits,
// on-disk cache location, default strategy/arch, optional git auto-commit
// identity, and the progress broadcast server. CLI flags always win over a
// loaded config file, which in turn wins over the hardcoded defaults below.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root TOML document.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Cache    CacheConfig    `toml:"cache"`
	Defaults DefaultsConfig `toml:"defaults"`
	Git      GitConfig      `toml:"git"`
	Progress ProgressConfig `toml:"progress"`
}

// RegistryConfig controls the registry client (C3).
type RegistryConfig struct {
	TagSearchLimit     int    `toml:"tag_search_limit"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	UserAgent          string `toml:"user_agent"`
}

// CacheConfig controls the on-disk tier of the tag cache (C5).
type CacheConfig struct {
	Directory  string `toml:"directory"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// DefaultsConfig supplies fallback values for CLI flags left unset.
type DefaultsConfig struct {
	Strategy string `toml:"strategy"`
	Arch     string `toml:"arch"`
}

// GitConfig controls the optional C11 auto-commit flow.
type GitConfig struct {
	AutoCommit  bool   `toml:"auto_commit"`
	AuthorName  string `toml:"author_name"`
	AuthorEmail string `toml:"author_email"`
}

// ProgressConfig controls the optional C12 broadcast server.
type ProgressConfig struct {
	Enabled    bool   `toml:"enabled"`
	ListenAddr string `toml:"listen_addr"`
}

// DefaultConfig returns the hardcoded fallback configuration, matching the
// table in the external-interfaces documentation.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			TagSearchLimit:     2000,
			HTTPTimeoutSeconds: 10,
			UserAgent:          "dockertag/1.0",
		},
		Cache: CacheConfig{
			Directory:  "~/.cache/dockertag",
			TTLSeconds: 3600,
		},
		Defaults: DefaultsConfig{
			Strategy: "latest",
			Arch:     "",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "",
			AuthorEmail: "",
		},
		Progress: ProgressConfig{
			Enabled:    false,
			ListenAddr: ":8090",
		},
	}
}

// Load reads and parses the TOML file at path, merging it onto
// DefaultConfig for any section entirely absent from the file. A missing
// file is not an error; it returns the defaults. In both cases a leading "~"
// in the cache directory is expanded.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Cache.Directory = expandHome(cfg.Cache.Directory)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Registry.TagSearchLimit == 0 {
		cfg.Registry.TagSearchLimit = DefaultConfig().Registry.TagSearchLimit
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = DefaultConfig().Cache.TTLSeconds
	}
	if cfg.Defaults.Strategy == "" {
		cfg.Defaults.Strategy = DefaultConfig().Defaults.Strategy
	}
	if cfg.Progress.ListenAddr == "" {
		cfg.Progress.ListenAddr = DefaultConfig().Progress.ListenAddr
	}

	cfg.Cache.Directory = expandHome(cfg.Cache.Directory)
	return cfg, nil
}

// Save writes cfg as TOML to path, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultPath returns the default configuration file location,
// `~/.config/dockertag/config.toml`.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "dockertag", "config.toml")
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[1:])
}
