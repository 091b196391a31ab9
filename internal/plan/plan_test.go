package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/cli/internal/graph"
	"github.com/appforge/cli/internal/recipe"
)

func buildGraph(t *testing.T, nodes []graph.Node) *graph.Graph {
	t.Helper()
	return graph.Build(nodes)
}

func modules(ids ...string) map[string]*recipe.Module {
	byID := make(map[string]*recipe.Module, len(ids))
	for _, id := range ids {
		byID[id] = &recipe.Module{ID: id, Version: "1.0.0", Source: "core"}
	}
	return byID
}

func TestBuild(t *testing.T) {
	t.Run("groups independent modules into one parallel batch", func(t *testing.T) {
		g := buildGraph(t, []graph.Node{
			{ID: "framework/nextjs"},
			{ID: "database/drizzle", Prerequisites: []string{"framework/nextjs"}},
			{ID: "auth/better-auth", Prerequisites: []string{"framework/nextjs"}},
		})
		order, err := g.TopologicalSort()
		require.NoError(t, err)

		batches := Build(order, modules("framework/nextjs", "database/drizzle", "auth/better-auth"), g)

		require.Len(t, batches, 2)
		assert.Equal(t, []string{"framework/nextjs"}, batches[0].IDs())
		assert.False(t, batches[0].CanExecuteInParallel)
		assert.ElementsMatch(t, []string{"auth/better-auth", "database/drizzle"}, batches[1].IDs())
		assert.True(t, batches[1].CanExecuteInParallel)
	})

	t.Run("moves connectors after plain batches", func(t *testing.T) {
		g := buildGraph(t, []graph.Node{
			{ID: "database/drizzle"},
			{ID: "auth/better-auth"},
			{ID: "connectors/drizzle-auth", Prerequisites: []string{"database/drizzle", "auth/better-auth"}},
			{ID: "payments/stripe", Prerequisites: []string{"connectors/drizzle-auth"}},
		})
		order, err := g.TopologicalSort()
		require.NoError(t, err)

		batches := Build(order, modules(
			"database/drizzle", "auth/better-auth", "connectors/drizzle-auth", "payments/stripe",
		), g)

		// payments/stripe is plain, so it precedes the connector batch even
		// though the graph placed it later.
		require.Len(t, batches, 3)
		assert.ElementsMatch(t, []string{"auth/better-auth", "database/drizzle"}, batches[0].IDs())
		assert.Equal(t, []string{"payments/stripe"}, batches[1].IDs())
		assert.Equal(t, []string{"connectors/drizzle-auth"}, batches[2].IDs())
	})

	t.Run("features collapse into one final sequential batch", func(t *testing.T) {
		g := buildGraph(t, []graph.Node{
			{ID: "framework/nextjs"},
			{ID: "features/admin", Prerequisites: []string{"framework/nextjs"}},
			{ID: "features/blog", Prerequisites: []string{"framework/nextjs"}},
			{ID: "connectors/admin-auth", Prerequisites: []string{"framework/nextjs"}},
		})
		order, err := g.TopologicalSort()
		require.NoError(t, err)

		batches := Build(order, modules(
			"framework/nextjs", "features/admin", "features/blog", "connectors/admin-auth",
		), g)

		require.Len(t, batches, 3)
		assert.Equal(t, []string{"framework/nextjs"}, batches[0].IDs())
		assert.Equal(t, []string{"connectors/admin-auth"}, batches[1].IDs())

		last := batches[2]
		assert.ElementsMatch(t, []string{"features/admin", "features/blog"}, last.IDs())
		assert.False(t, last.CanExecuteInParallel)
	})

	t.Run("renumbers batches sequentially", func(t *testing.T) {
		g := buildGraph(t, []graph.Node{
			{ID: "a/one"},
			{ID: "connectors/two", Prerequisites: []string{"a/one"}},
			{ID: "features/three", Prerequisites: []string{"connectors/two"}},
		})
		order, err := g.TopologicalSort()
		require.NoError(t, err)

		batches := Build(order, modules("a/one", "connectors/two", "features/three"), g)

		require.Len(t, batches, 3)
		for i, b := range batches {
			assert.Equal(t, i+1, b.Number)
		}
	})

	t.Run("empty order yields no batches", func(t *testing.T) {
		g := buildGraph(t, nil)
		assert.Nil(t, Build(nil, nil, g))
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		id   string
		want layer
	}{
		{"auth/better-auth", layerPlain},
		{"framework/nextjs", layerPlain},
		{"connectors/drizzle-auth", layerConnector},
		{"connector/stripe-auth", layerConnector},
		{"features/admin", layerFeature},
		{"feature/blog", layerFeature},
		{"standalone", layerPlain},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.id))
		})
	}
}

func TestTotalModules(t *testing.T) {
	assert.Equal(t, 0, TotalModules(nil))
	assert.Equal(t, 3, TotalModules([]Batch{
		{Modules: []*recipe.Module{{ID: "a"}, {ID: "b"}}},
		{Modules: []*recipe.Module{{ID: "c"}}},
	}))
}
