package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/cli/internal/blueprint"
	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
	"github.com/appforge/cli/internal/marketplace"
	"github.com/appforge/cli/internal/plan"
	"github.com/appforge/cli/internal/recipe"
	"github.com/appforge/cli/internal/template"
	"github.com/appforge/cli/internal/testutil"
)

const engineRecipes = `version: 1
recipes: []
`

var engineFixtures = []testutil.ModuleFixture{
	{
		ID: "tool/alpha",
		Manifest: `id: tool/alpha
version: 1.0.0
actions:
  - type: CREATE_FILE
    path: alpha.txt
    content: "alpha for {{ .Project.Name }}\n"
`,
	},
	{
		ID: "tool/beta",
		Manifest: `id: tool/beta
version: 2.0.0
actions:
  - type: CREATE_FILE
    path: src/beta.ts
    template: beta.ts.tmpl
`,
		Templates: map[string]string{
			"beta.ts.tmpl": "// beta {{ .Module.Version }}\n",
		},
	},
	{
		ID: "tool/broken",
		Manifest: `id: tool/broken
version: 1.0.0
actions:
  - type: CREATE_FILE
    path: broken.txt
    template: missing.tmpl
`,
	},
	{
		ID: "tool/gamma",
		Manifest: `id: tool/gamma
version: 3.0.0
actions:
  - type: CREATE_FILE
    path: gamma.txt
    content: "gamma\n"
`,
	},
	{
		ID: "tool/readme-a",
		Manifest: `id: tool/readme-a
version: 1.0.0
actions:
  - type: CREATE_FILE
    path: README.md
    content: "from a\n"
`,
	},
	{
		ID: "tool/readme-b",
		Manifest: `id: tool/readme-b
version: 1.0.0
actions:
  - type: CREATE_FILE
    path: README.md
    content: "from b\n"
    conflict:
      strategy: replace
`,
	},
}

func testModule(id, version string) *recipe.Module {
	return &recipe.Module{ID: id, Version: version, Source: "core", SourceKind: "local"}
}

// newTestEngine builds an engine over a throwaway marketplace and project
// root, with manifests pre-loaded for the given modules.
func newTestEngine(t *testing.T, dryRun bool, modules ...*recipe.Module) (*Engine, string) {
	t.Helper()

	marketRoot := t.TempDir()
	testutil.WriteMarketplace(t, marketRoot, engineRecipes, engineFixtures...)

	registry, err := marketplace.NewRegistry(marketRoot, map[string]genome.Marketplace{
		"core": {Type: "local", Path: marketRoot},
	})
	require.NoError(t, err)

	adapter, err := registry.Get("core")
	require.NoError(t, err)

	manifests := make(map[string]*marketplace.Manifest, len(modules))
	for _, m := range modules {
		manifest, err := adapter.LoadManifest(context.Background(), m.ID)
		require.NoError(t, err)
		manifests[m.ID] = manifest
	}

	projectRoot := t.TempDir()
	eng := New(Options{
		Registry:    registry,
		Manifests:   manifests,
		Project:     template.ProjectData{Name: "my-app", Version: "0.1.0"},
		Root:        projectRoot,
		Parallelism: 4,
		DryRun:      dryRun,
	})
	return eng, projectRoot
}

func TestNew(t *testing.T) {
	eng := New(Options{Parallelism: 0})
	assert.Equal(t, DefaultParallelism, eng.parallelism)

	eng = New(Options{Parallelism: 2})
	assert.Equal(t, 2, eng.parallelism)
}

func TestRunParallelBatch(t *testing.T) {
	alpha := testModule("tool/alpha", "1.0.0")
	beta := testModule("tool/beta", "2.0.0")
	eng, root := newTestEngine(t, false, alpha, beta)

	run := eng.Run(context.Background(), []plan.Batch{
		{Number: 1, Modules: []*recipe.Module{alpha, beta}, CanExecuteInParallel: true},
	})

	assert.True(t, run.Success)
	assert.Equal(t, 2, run.TotalExecuted)
	assert.Equal(t, 0, run.TotalFailed)
	assert.Empty(t, run.Errors)
	require.Len(t, run.BatchResults, 1)
	assert.True(t, run.BatchResults[0].Parallel)

	// Parallel results come back sorted by module id.
	results := run.BatchResults[0].Results
	require.Len(t, results, 2)
	assert.Equal(t, "tool/alpha", results[0].ModuleID)
	assert.Equal(t, "tool/beta", results[1].ModuleID)

	data, err := os.ReadFile(filepath.Join(root, "alpha.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha for my-app\n", string(data))

	data, err = os.ReadFile(filepath.Join(root, "src", "beta.ts"))
	require.NoError(t, err)
	assert.Equal(t, "// beta 2.0.0\n", string(data))
}

func TestRunStopsAfterFailedBatch(t *testing.T) {
	alpha := testModule("tool/alpha", "1.0.0")
	broken := testModule("tool/broken", "1.0.0")
	gamma := testModule("tool/gamma", "3.0.0")
	eng, root := newTestEngine(t, false, alpha, broken, gamma)

	run := eng.Run(context.Background(), []plan.Batch{
		{Number: 1, Modules: []*recipe.Module{alpha, broken}, CanExecuteInParallel: true},
		{Number: 2, Modules: []*recipe.Module{gamma}},
	})

	assert.False(t, run.Success)
	assert.Equal(t, 2, run.TotalExecuted)
	assert.Equal(t, 1, run.TotalFailed)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0].Error(), "tool/broken")

	// The healthy module in the failed batch still ran to completion.
	assert.FileExists(t, filepath.Join(root, "alpha.txt"))

	// Batch 2 was never attempted.
	require.Len(t, run.BatchResults, 1)
	assert.NoFileExists(t, filepath.Join(root, "gamma.txt"))
}

func TestRunParallelBatchCollectsEveryResult(t *testing.T) {
	alpha := testModule("tool/alpha", "1.0.0")
	beta := testModule("tool/beta", "2.0.0")
	broken := testModule("tool/broken", "1.0.0")
	gamma := testModule("tool/gamma", "3.0.0")
	eng, root := newTestEngine(t, false, alpha, beta, broken, gamma)

	run := eng.Run(context.Background(), []plan.Batch{
		{Number: 1, Modules: []*recipe.Module{alpha, beta, broken}, CanExecuteInParallel: true},
		{Number: 2, Modules: []*recipe.Module{gamma}},
	})

	// The failure does not short-circuit its siblings: all three report.
	assert.False(t, run.Success)
	assert.Equal(t, 3, run.TotalExecuted)
	assert.Equal(t, 1, run.TotalFailed)
	require.Len(t, run.BatchResults, 1)
	assert.Len(t, run.BatchResults[0].Results, 3)

	assert.FileExists(t, filepath.Join(root, "alpha.txt"))
	assert.FileExists(t, filepath.Join(root, "src", "beta.ts"))
	assert.NoFileExists(t, filepath.Join(root, "gamma.txt"))
}

func TestRunSequentialFailFast(t *testing.T) {
	alpha := testModule("tool/alpha", "1.0.0")
	broken := testModule("tool/broken", "1.0.0")
	gamma := testModule("tool/gamma", "3.0.0")
	eng, root := newTestEngine(t, false, alpha, broken, gamma)

	run := eng.Run(context.Background(), []plan.Batch{
		{Number: 1, Modules: []*recipe.Module{alpha, broken, gamma}},
	})

	assert.False(t, run.Success)
	assert.Equal(t, 2, run.TotalExecuted)
	assert.Equal(t, 1, run.TotalFailed)

	// gamma sits after the failure and was skipped.
	require.Len(t, run.BatchResults, 1)
	assert.Len(t, run.BatchResults[0].Results, 2)
	assert.NoFileExists(t, filepath.Join(root, "gamma.txt"))
}

func TestRunDryRun(t *testing.T) {
	alpha := testModule("tool/alpha", "1.0.0")
	eng, root := newTestEngine(t, true, alpha)

	run := eng.Run(context.Background(), []plan.Batch{
		{Number: 1, Modules: []*recipe.Module{alpha}},
	})

	assert.True(t, run.Success)
	require.Len(t, run.BatchResults, 1)
	require.Len(t, run.BatchResults[0].Results, 1)

	res := run.BatchResults[0].Results[0]
	require.Contains(t, res.Staged, "alpha.txt")
	assert.Equal(t, "alpha for my-app\n", res.Staged["alpha.txt"].Content)
	assert.Empty(t, res.Files)
	assert.NoFileExists(t, filepath.Join(root, "alpha.txt"))
}

func TestRunCrossModuleOverwriteWarning(t *testing.T) {
	a := testModule("tool/readme-a", "1.0.0")
	b := testModule("tool/readme-b", "1.0.0")
	eng, root := newTestEngine(t, false, a, b)

	run := eng.Run(context.Background(), []plan.Batch{
		{Number: 1, Modules: []*recipe.Module{a}},
		{Number: 2, Modules: []*recipe.Module{b}},
	})

	assert.True(t, run.Success)
	require.Len(t, run.Warnings, 1)
	assert.Contains(t, run.Warnings[0], "README.md")
	assert.Contains(t, run.Warnings[0], "tool/readme-a")
	assert.Contains(t, run.Warnings[0], "tool/readme-b")

	data, err := os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "from b\n", string(data))
}

func TestExecuteModuleMissingManifest(t *testing.T) {
	eng, _ := newTestEngine(t, false)

	res := eng.executeModule(context.Background(), testModule("tool/unknown", "1.0.0"))
	require.Error(t, res.Error)
	assert.ErrorIs(t, res.Error, errors.ErrNotFound)
	assert.Contains(t, res.Error.Error(), "tool/unknown")
}

type panicHandler struct{}

func (panicHandler) Kind() blueprint.Kind { return blueprint.Kind("EXPLODE") }

func (panicHandler) Handle(context.Context, *blueprint.Context, blueprint.Action) error {
	panic("boom")
}

func TestExecuteModuleRecoversPanic(t *testing.T) {
	alpha := testModule("tool/alpha", "1.0.0")
	eng, _ := newTestEngine(t, false, alpha)

	require.NoError(t, eng.dispatcher.Register(panicHandler{}))
	eng.manifests["tool/alpha"].Actions = []blueprint.Action{{Kind: "EXPLODE"}}

	res := eng.executeModule(context.Background(), alpha)
	require.Error(t, res.Error)
	assert.ErrorIs(t, res.Error, errors.ErrExecution)
	assert.Contains(t, res.Error.Error(), "panicked")
	assert.Contains(t, res.Error.Error(), "boom")
}

func TestRunCancelledContext(t *testing.T) {
	alpha := testModule("tool/alpha", "1.0.0")
	beta := testModule("tool/beta", "2.0.0")
	eng, root := newTestEngine(t, false, alpha, beta)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := eng.Run(ctx, []plan.Batch{
		{Number: 1, Modules: []*recipe.Module{alpha, beta}, CanExecuteInParallel: true},
	})

	assert.False(t, run.Success)
	assert.NotEmpty(t, run.Errors)
	assert.NoFileExists(t, filepath.Join(root, "alpha.txt"))
}
