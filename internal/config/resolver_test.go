package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMarketplaceDir(t *testing.T) {
	tests := []struct {
		name       string
		flagValue  string
		envValue   string
		configVal  string
		wantSource ConfigSource
		wantDir    string
	}{
		{
			name:       "flag wins over everything",
			flagValue:  "/flag/marketplace",
			envValue:   "/env/marketplace",
			configVal:  "/config/marketplace",
			wantSource: SourceFlag,
			wantDir:    "/flag/marketplace",
		},
		{
			name:       "env wins over config",
			envValue:   "/env/marketplace",
			configVal:  "/config/marketplace",
			wantSource: SourceEnv,
			wantDir:    "/env/marketplace",
		},
		{
			name:       "config wins over default",
			configVal:  "/config/marketplace",
			wantSource: SourceConfig,
			wantDir:    "/config/marketplace",
		},
		{
			name:       "default when nothing set",
			wantSource: SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("FORGE_MARKETPLACE_DIR", tt.envValue)
			} else {
				t.Setenv("FORGE_MARKETPLACE_DIR", "")
			}

			result, err := ResolveMarketplaceDir(ResolveMarketplaceDirOptions{
				FlagValue:   tt.flagValue,
				ConfigValue: tt.configVal,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantSource, result.Source)
			if tt.wantDir != "" {
				assert.Equal(t, tt.wantDir, result.Dir)
			} else {
				assert.Contains(t, result.Dir, "marketplace")
			}
		})
	}

	t.Run("shadowed values recorded", func(t *testing.T) {
		t.Setenv("FORGE_MARKETPLACE_DIR", "/env/marketplace")

		result, err := ResolveMarketplaceDir(ResolveMarketplaceDirOptions{
			FlagValue:   "/flag/marketplace",
			ConfigValue: "/config/marketplace",
		})
		require.NoError(t, err)

		assert.Equal(t, "/env/marketplace", result.Shadowed[SourceEnv])
		assert.Equal(t, "/config/marketplace", result.Shadowed[SourceConfig])
	})
}

func TestResolveConfigPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("FORGE_CONFIG", "/env/config.yaml")

		result, err := ResolveConfigPath(ResolveConfigPathOptions{FlagValue: "/flag/config.yaml"})
		require.NoError(t, err)

		assert.Equal(t, "/flag/config.yaml", result.ConfigPath)
		assert.Equal(t, SourceFlag, result.Source)
		assert.Equal(t, "/env/config.yaml", result.Shadowed[SourceEnv])
	})

	t.Run("default when nothing set", func(t *testing.T) {
		t.Setenv("FORGE_CONFIG", "")

		result, err := ResolveConfigPath(ResolveConfigPathOptions{})
		require.NoError(t, err)

		assert.Equal(t, SourceDefault, result.Source)
		assert.Contains(t, result.ConfigPath, "config.yaml")
	})
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "~/.forge/marketplace", cfg.MarketplaceDir)
	assert.Zero(t, cfg.Parallelism)
	assert.False(t, cfg.Strict)
}
