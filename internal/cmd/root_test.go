package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/cli/internal/config"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "forge", root.Use)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"create", "plan", "lock", "vet", "config", "version"} {
		assert.Contains(t, names, want, "subcommand %s", want)
	}

	for _, name := range []string{"config", "verbose", "timestamps", "strict"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "persistent flag %s", name)
	}
}

func TestRoot_UnknownCommand(t *testing.T) {
	err := executeRoot(t, "deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy")
}

func TestStrictEnabled(t *testing.T) {
	origFlag, origCfg := strictFlag, forgeConfig
	t.Cleanup(func() {
		strictFlag, forgeConfig = origFlag, origCfg
	})

	strictFlag = false
	forgeConfig = nil
	assert.False(t, StrictEnabled())

	forgeConfig = &config.Config{Strict: true}
	assert.True(t, StrictEnabled())

	forgeConfig = &config.Config{}
	strictFlag = true
	assert.True(t, StrictEnabled())
}

func TestStrictFlagReachesResolution(t *testing.T) {
	// The pipeline fixture resolves without warnings, so strict mode
	// must not change its outcome.
	dir := writeProjectFixture(t)
	err := executeRoot(t, "vet", dir, "--strict")
	assert.NoError(t, err)
}
