// Package netsukecfg decodes the project-level netsuke.toml settings file:
// network-policy defaults, the legacy-digests capability flag, the `which`
// workspace-fallback toggle, and cache-directory overrides. This is a flat
// settings file the core itself loads directly, with no flag/env/file
// precedence chain of its own.
package netsukecfg

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/leynos/netsuke-go/internal/hostpattern"
)

// NetworkConfig mirrors hostpattern.Policy in TOML-friendly form.
type NetworkConfig struct {
	AllowedSchemes []string `toml:"allowed_schemes"`
	AllowedHosts   []string `toml:"allowed_hosts"`
	BlockedHosts   []string `toml:"blocked_hosts"`
	DenyAllHosts   bool     `toml:"deny_all_hosts"`
}

// WhichConfig holds the [which] table of netsuke.toml (workspace fallback
// toggle, skip-list, depth bound). It is decoded and validated, but it is not
// passed to the template registry, so it does not change how the `which`
// helper resolves commands.
type WhichConfig struct {
	WorkspaceFallback bool     `toml:"workspace_fallback"`
	SkipDirs          []string `toml:"skip_dirs"`
	MaxDepth          int      `toml:"max_depth"`
}

// Config is the root of netsuke.toml.
type Config struct {
	Version       string        `toml:"version"`
	LegacyDigests bool          `toml:"legacy_digests"`
	CacheDir      string        `toml:"cache_dir"`
	Network       NetworkConfig `toml:"network"`
	Which         WhichConfig   `toml:"which"`
}

// Default returns the built-in defaults: schemes = {https}, allow-list
// = ANY (empty AllowedHosts with DenyAllHosts false), block-list empty, the
// fetch cache under .netsuke/fetch, legacy digests disabled, and the which
// workspace fallback enabled with a conservative depth bound.
func Default() *Config {
	return &Config{
		Version:       "1",
		LegacyDigests: false,
		CacheDir:      ".netsuke/fetch",
		Network: NetworkConfig{
			AllowedSchemes: []string{"https"},
		},
		Which: WhichConfig{
			WorkspaceFallback: true,
			SkipDirs:          []string{".git", "node_modules", ".netsuke"},
			MaxDepth:          4,
		},
	}
}

// Load reads path, merging onto Default(); a missing file is not an error -
// the defaults alone are a complete, valid configuration.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading netsuke.toml: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing netsuke.toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy builds the hostpattern.Policy the `fetch` helper enforces from the
// decoded [network] table.
func (c *Config) Policy() (hostpattern.Policy, error) {
	policy := hostpattern.DefaultPolicy()
	if len(c.Network.AllowedSchemes) > 0 {
		schemes := make(map[string]struct{}, len(c.Network.AllowedSchemes))
		for _, s := range c.Network.AllowedSchemes {
			schemes[s] = struct{}{}
		}
		policy.AllowedSchemes = schemes
	}
	if c.Network.DenyAllHosts {
		policy = policy.DenyAllHosts()
	}
	for _, h := range c.Network.AllowedHosts {
		pat, err := hostpattern.Parse(h)
		if err != nil {
			return hostpattern.Policy{}, err
		}
		policy = policy.AllowHost(pat)
	}
	for _, h := range c.Network.BlockedHosts {
		pat, err := hostpattern.Parse(h)
		if err != nil {
			return hostpattern.Policy{}, err
		}
		policy = policy.BlockHost(pat)
	}
	return policy, nil
}

// Validate checks invariants that the toml decoder itself can't enforce.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir must not be empty")
	}
	if c.Which.MaxDepth < 0 {
		return fmt.Errorf("which.max_depth must not be negative")
	}
	return nil
}
