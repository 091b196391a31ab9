package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/appforge/cli/internal/errors"
)

func TestConfigInit_CreatesFiles(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	err := executeRoot(t, "config", "init")
	require.NoError(t, err)

	forgeHome := filepath.Join(home, ".forge")
	dirInfo, err := os.Stat(forgeHome)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	configFile := filepath.Join(forgeHome, "config.yaml")
	info, err := os.Stat(configFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	content, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "marketplaceDir:")
	assert.Contains(t, string(content), "parallelism:")
	assert.Contains(t, string(content), "strict:")

	recipes, err := os.ReadFile(filepath.Join(forgeHome, "marketplace", "recipes.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(recipes), "version: 1")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, executeRoot(t, "config", "init"))

	err := executeRoot(t, "config", "init")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrValidation)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInit_ForceOverwrites(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, executeRoot(t, "config", "init"))

	configFile := filepath.Join(home, ".forge", "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("# local edits\n"), 0o600))

	require.NoError(t, executeRoot(t, "config", "init", "--force"))

	content, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "local edits")
	assert.Contains(t, string(content), "marketplaceDir:")
}

func TestConfigShow(t *testing.T) {
	t.Run("defaults when no config file", func(t *testing.T) {
		err := executeRoot(t, "config", "show")
		assert.NoError(t, err)
	})

	t.Run("explicit config file", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "forge.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("parallelism: 4\n"), 0o644))

		err := executeRoot(t, "config", "show", "--config", cfgPath)
		assert.NoError(t, err)
	})

	t.Run("verbose source report", func(t *testing.T) {
		err := executeRoot(t, "config", "show", "--verbose")
		assert.NoError(t, err)
	})
}
