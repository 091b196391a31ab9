package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		// Create temp config file
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		content := `
marketplaceDir: /custom/marketplace
parallelism: 4
strict: true
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		loader := NewLoader()
		cfg, err := loader.Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "/custom/marketplace", cfg.MarketplaceDir)
		assert.Equal(t, 4, cfg.Parallelism)
		assert.True(t, cfg.Strict)
	})

	t.Run("returns empty config for missing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "nonexistent.yaml")

		loader := NewLoader()
		cfg, err := loader.Load(configFile)

		require.NoError(t, err)
		assert.Empty(t, cfg.MarketplaceDir)
		assert.Zero(t, cfg.Parallelism)
	})

	t.Run("loads from environment variables", func(t *testing.T) {
		t.Setenv("FORGE_MARKETPLACE_DIR", "/env/marketplace")
		t.Setenv("FORGE_PARALLELISM", "8")

		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "empty.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte(""), 0o644))

		loader := NewLoader()
		cfg, err := loader.Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "/env/marketplace", cfg.MarketplaceDir)
		assert.Equal(t, 8, cfg.Parallelism)
	})

	t.Run("env vars override file values", func(t *testing.T) {
		t.Setenv("FORGE_MARKETPLACE_DIR", "/env/marketplace")

		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		content := `marketplaceDir: /file/marketplace`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		loader := NewLoader()
		cfg, err := loader.Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "/env/marketplace", cfg.MarketplaceDir)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("marketplaceDir: [broken"), 0o644))

		loader := NewLoader()
		_, err := loader.Load(configFile)

		assert.Error(t, err)
	})
}

func TestLoadWithDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "empty.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(""), 0o644))

	loader := NewLoader()
	cfg, err := loader.LoadWithDefaults(configFile)

	require.NoError(t, err)
	assert.Equal(t, "~/.forge/marketplace", cfg.MarketplaceDir)
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Run("reads env vars", func(t *testing.T) {
		t.Setenv("FORGE_MARKETPLACE_DIR", "/env/marketplace")
		t.Setenv("FORGE_PARALLELISM", "2")
		t.Setenv("FORGE_STRICT", "true")

		loader := NewLoader()
		cfg, err := loader.LoadFromEnvOnly()

		require.NoError(t, err)
		assert.Equal(t, "/env/marketplace", cfg.MarketplaceDir)
		assert.Equal(t, 2, cfg.Parallelism)
		assert.True(t, cfg.Strict)
	})

	t.Run("rejects non-numeric parallelism", func(t *testing.T) {
		t.Setenv("FORGE_PARALLELISM", "many")

		loader := NewLoader()
		_, err := loader.LoadFromEnvOnly()

		assert.Error(t, err)
	})
}

func TestConfigFileExists(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte(""), 0o644))

		exists, err := ConfigFileExists(configFile)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		exists, err := ConfigFileExists(filepath.Join(tmpDir, "missing.yaml"))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
