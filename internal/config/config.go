// Package config provides configuration loading and management.
package config

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: false. Override with --verbose flag.
	Timestamps *bool `json:"timestamps,omitempty"`
}

// Config represents the forge CLI configuration.
// Loaded from ~/.forge/config.yaml; environment variables take precedence.
type Config struct {
	// MarketplaceDir is the root directory of the local marketplace that
	// holds recipe books and module blueprints.
	// Env: FORGE_MARKETPLACE_DIR, Default: ~/.forge/marketplace
	MarketplaceDir string `json:"marketplaceDir,omitempty"`

	// Parallelism caps how many modules of a parallel batch run at once.
	// Zero means one worker per CPU.
	// Env: FORGE_PARALLELISM, Default: 0
	Parallelism int `json:"parallelism,omitempty"`

	// Strict turns recoverable resolution warnings (deprecated capability
	// fallback, auto-include pass exhaustion) into hard errors.
	// Env: FORGE_STRICT, Default: false
	Strict bool `json:"strict,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `forge config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		MarketplaceDir: "~/.forge/marketplace",
		Parallelism:    0,
	}
}

// WithDefaults fills unset fields with their defaults.
func (c *Config) WithDefaults() *Config {
	if c.MarketplaceDir == "" {
		c.MarketplaceDir = "~/.forge/marketplace"
	}
	return c
}

// DefaultConfigTemplate is the annotated config file written by
// `forge config init`.
const DefaultConfigTemplate = `# forge configuration
# Values here are overridden by FORGE_* environment variables and flags.

# Root directory of the default local marketplace.
marketplaceDir: ~/.forge/marketplace

# Modules executed concurrently within a parallel batch. 0 = one per CPU.
parallelism: 0

# Turn recoverable resolution warnings into hard errors.
strict: false

log:
  # Show timestamps in log output.
  timestamps: false
`
