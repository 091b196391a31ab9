package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
	"github.com/appforge/cli/internal/testutil"
)

func TestNewVetCmd(t *testing.T) {
	cmd := NewVetCmd()

	assert.Equal(t, "vet [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("genome"))
}

func TestVet_ValidGenome(t *testing.T) {
	dir := writeProjectFixture(t)

	err := executeRoot(t, "vet", dir)
	assert.NoError(t, err)
}

func TestVet_AggregatesProblems(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteGenome(t, dir, `project:
  version: 0.1.0
marketplaces:
  core:
    type: local
    path: ./marketplace
apps:
  web:
    framework: nextjs
    dependencies: [auth]
`)

	err := executeRoot(t, "vet", dir)
	require.Error(t, err)

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitValidationError, exitErr.Code)
	assert.True(t, exitErr.Printed)
	// Missing project.name plus the undeclared auth dependency.
	assert.Contains(t, err.Error(), "2 problem(s)")
}

func TestVet_MissingGenomeFile(t *testing.T) {
	dir := t.TempDir()

	err := executeRoot(t, "vet", dir)
	require.Error(t, err)

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitValidationError, exitErr.Code)
}

func TestVet_MissingRecipe(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteGenome(t, dir, `project:
  name: my-app
marketplaces:
  core:
    type: local
    path: ./marketplace
packages:
  search:
    from: core
`)
	testutil.WriteMarketplace(t, filepath.Join(dir, "marketplace"), "version: 1\npackages: {}\n")

	err := executeRoot(t, "vet", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s)")
}

func TestVetCatalog_UnknownProvider(t *testing.T) {
	dir := t.TempDir()
	genomePath := testutil.WriteGenome(t, dir, `project:
  name: my-app
marketplaces:
  core:
    type: local
    path: ./marketplace
packages:
  database:
    from: core
    provider: prisma
`)
	testutil.WriteMarketplace(t, filepath.Join(dir, "marketplace"), cmdRecipes)

	g, err := genome.Load(genomePath)
	require.NoError(t, err)

	errs := vetCatalog(context.Background(), g, genomePath)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], oerrors.ErrNotFound)
	assert.Contains(t, errs[0].Error(), `no provider "prisma"`)
	assert.Contains(t, errs[0].Error(), "drizzle")
}

func TestVetCatalog_DetectsCycle(t *testing.T) {
	dir := t.TempDir()
	genomePath := testutil.WriteGenome(t, dir, `project:
  name: my-app
marketplaces:
  core:
    type: local
    path: ./marketplace
packages:
  tool:
    from: core
`)
	recipes := `version: 1
packages:
  tool:
    defaultProvider: main
    providers:
      main:
        modules:
          - id: cyc/a
            version: 1.0.0
          - id: cyc/b
            version: 1.0.0
`
	testutil.WriteMarketplace(t, filepath.Join(dir, "marketplace"), recipes,
		testutil.ModuleFixture{
			ID:       "cyc/a",
			Manifest: "id: cyc/a\nversion: 1.0.0\nprerequisites: [cyc/b]\nactions: []\n",
		},
		testutil.ModuleFixture{
			ID:       "cyc/b",
			Manifest: "id: cyc/b\nversion: 1.0.0\nprerequisites: [cyc/a]\nactions: []\n",
		},
	)

	g, err := genome.Load(genomePath)
	require.NoError(t, err)

	errs := vetCatalog(context.Background(), g, genomePath)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], oerrors.ErrCycle)
}
