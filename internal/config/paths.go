package config

import (
	"os"
	"path/filepath"
)

// Paths contains standard filesystem paths for forge.
type Paths struct {
	// ConfigFile is the path to the config file (~/.forge/config.yaml).
	ConfigFile string

	// MarketplaceDir is the local marketplace root (~/.forge/marketplace).
	MarketplaceDir string

	// HomeDir is the forge home directory (~/.forge).
	HomeDir string
}

// DefaultPaths returns the default paths for forge.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	forgeHome := filepath.Join(homeDir, ".forge")

	return &Paths{
		ConfigFile:     filepath.Join(forgeHome, "config.yaml"),
		MarketplaceDir: filepath.Join(forgeHome, "marketplace"),
		HomeDir:        forgeHome,
	}, nil
}

// GetConfigFile returns the config file path.
// If FORGE_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv("FORGE_CONFIG"); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.ConfigFile, nil
}

// GetMarketplaceDir returns the marketplace root path.
// If FORGE_MARKETPLACE_DIR is set, it takes precedence.
func GetMarketplaceDir() (string, error) {
	if envPath := os.Getenv("FORGE_MARKETPLACE_DIR"); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.MarketplaceDir, nil
}

// GetHomeDir returns the forge home directory path.
func GetHomeDir() (string, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.HomeDir, nil
}

// EnsureHomeDir creates the forge home directory if it doesn't exist.
func EnsureHomeDir() error {
	homeDir, err := GetHomeDir()
	if err != nil {
		return err
	}

	return os.MkdirAll(homeDir, 0o755)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// Handle ~username (not supported, return as-is)
	return path, nil
}
