package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/appforge/cli/internal/errors"
)

func TestNewPlanCmd(t *testing.T) {
	cmd := NewPlanCmd()

	assert.Equal(t, "plan [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	flag := cmd.Flags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "table", flag.DefValue)
	assert.Equal(t, "o", flag.Shorthand)
}

func TestPlan_Formats(t *testing.T) {
	for _, format := range []string{"table", "yaml", "json", "JSON"} {
		t.Run(format, func(t *testing.T) {
			dir := writeProjectFixture(t)
			err := executeRoot(t, "plan", dir, "-o", format)
			assert.NoError(t, err)
		})
	}
}

func TestPlan_UnsupportedFormat(t *testing.T) {
	dir := writeProjectFixture(t)

	err := executeRoot(t, "plan", dir, "-o", "xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrValidation)
	assert.Contains(t, err.Error(), "xml")
}

func TestPlan_MissingGenome(t *testing.T) {
	err := executeRoot(t, "plan", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}
