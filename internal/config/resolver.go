package config

import (
	"os"

	"github.com/appforge/cli/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolveMarketplaceDirOptions contains options for marketplace resolution.
type ResolveMarketplaceDirOptions struct {
	// FlagValue is the --marketplace flag value (empty if not set).
	FlagValue string
	// ConfigValue is the marketplaceDir value from config file (empty if not set).
	ConfigValue string
}

// ResolveMarketplaceDirResult contains the resolved directory and its source.
type ResolveMarketplaceDirResult struct {
	// Dir is the resolved marketplace root.
	Dir string
	// Source indicates where the directory came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveMarketplaceDir resolves the marketplace root using precedence:
// (1) --marketplace flag, (2) FORGE_MARKETPLACE_DIR env, (3) config.marketplaceDir,
// (4) ~/.forge/marketplace default.
func ResolveMarketplaceDir(opts ResolveMarketplaceDirOptions) (ResolveMarketplaceDirResult, error) {
	result := ResolveMarketplaceDirResult{
		Shadowed: make(map[ConfigSource]string),
	}

	envValue := os.Getenv("FORGE_MARKETPLACE_DIR")

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultDir := paths.MarketplaceDir

	switch {
	case opts.FlagValue != "":
		result.Dir = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		if opts.ConfigValue != "" {
			result.Shadowed[SourceConfig] = opts.ConfigValue
		}
	case envValue != "":
		result.Dir = envValue
		result.Source = SourceEnv
		if opts.ConfigValue != "" {
			result.Shadowed[SourceConfig] = opts.ConfigValue
		}
	case opts.ConfigValue != "":
		result.Dir = opts.ConfigValue
		result.Source = SourceConfig
	default:
		result.Dir = defaultDir
		result.Source = SourceDefault
	}

	return result, nil
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string
	// Source indicates where the config path came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) FORGE_CONFIG env, (3) ~/.forge/config.yaml default.
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolveConfigPathResult, error) {
	result := ResolveConfigPathResult{
		Shadowed: make(map[ConfigSource]string),
	}

	envValue := os.Getenv("FORGE_CONFIG")

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case opts.FlagValue != "":
		result.ConfigPath = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.ConfigPath = envValue
		result.Source = SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.ConfigPath = defaultPath
		result.Source = SourceDefault
	}

	return result, nil
}

// ResolvedValue describes one resolved configuration value for debug logging.
type ResolvedValue struct {
	Name     string
	Value    string
	Source   ConfigSource
	Shadowed map[ConfigSource]string
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("resolved config value",
			"name", v.Name,
			"value", v.Value,
			"source", string(v.Source),
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("shadowed config value",
				"name", v.Name,
				"value", shadowed,
				"source", string(source),
			)
		}
	}
}
