package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
}

func TestVersion_Runs(t *testing.T) {
	err := executeRoot(t, "version")
	assert.NoError(t, err)
}
