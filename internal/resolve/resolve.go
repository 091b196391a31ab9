// Package resolve runs the full resolution pipeline: declared packages expand
// into modules, framework modules join, auto-inclusion closes over module
// requirements, and the dependency graph orders everything.
package resolve

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
	"github.com/appforge/cli/internal/graph"
	"github.com/appforge/cli/internal/marketplace"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/recipe"
)

// autoIncludeCap bounds the auto-inclusion fixed point. Require chains
// deeper than this return a partial result with a warning.
const autoIncludeCap = 10

// Resolution is the complete resolved state for one genome.
type Resolution struct {
	// Modules is the resolved set in discovery order: framework modules,
	// expanded packages, auto-included requirements.
	Modules []*recipe.Module

	// ByID indexes Modules.
	ByID map[string]*recipe.Module

	// Manifests holds every module's loaded manifest.
	Manifests map[string]*marketplace.Manifest

	// Order is the topological execution order.
	Order []string

	// Graph is the prerequisite graph over Modules.
	Graph *graph.Graph

	// Books holds each marketplace's recipe book.
	Books map[string]*recipe.Book

	// Warnings collects non-fatal resolution notes.
	Warnings []string
}

// Resolver wires the pipeline to a marketplace registry.
type Resolver struct {
	registry *marketplace.Registry
}

// New creates a resolver over the given registry.
func New(registry *marketplace.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve runs the pipeline for one genome.
func (r *Resolver) Resolve(ctx context.Context, g *genome.Genome) (*Resolution, error) {
	books, err := r.registry.PrefetchRecipeBooks(ctx)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		ByID:      make(map[string]*recipe.Module),
		Manifests: make(map[string]*marketplace.Manifest),
		Books:     books,
	}

	if err := r.addFrameworkModules(ctx, g, res); err != nil {
		return nil, err
	}

	expander := recipe.NewExpander(books, r.registry.Kinds())
	expanded, err := expander.Expand(g.Packages)
	if err != nil {
		return nil, err
	}
	for _, m := range expanded {
		addModule(res, m)
	}

	if err := r.autoInclude(ctx, res); err != nil {
		return nil, err
	}

	nodes := make([]graph.Node, 0, len(res.Modules))
	for _, m := range res.Modules {
		nodes = append(nodes, graph.Node{ID: m.ID, Prerequisites: m.Prerequisites})
	}
	res.Graph = graph.Build(nodes)

	if err := res.Graph.DetectCycles(); err != nil {
		return nil, err
	}
	order, err := res.Graph.TopologicalSort()
	if err != nil {
		return nil, err
	}
	res.Order = order

	output.Debug("resolution complete",
		"modules", len(res.Modules),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// addModule appends a module unless its id is already resolved. The first
// insertion wins, matching recipe expansion's deduplication.
func addModule(res *Resolution, m *recipe.Module) {
	if _, ok := res.ByID[m.ID]; ok {
		output.Debug("module already resolved, skipping duplicate", "module", m.ID)
		return
	}
	res.Modules = append(res.Modules, m)
	res.ByID[m.ID] = m
}

// addFrameworkModules resolves each app's implied framework module. The app
// declares no marketplace, so the module is searched across all of them.
// The first declaring app's parameters ride along.
func (r *Resolver) addFrameworkModules(ctx context.Context, g *genome.Genome, res *Resolution) error {
	params := make(map[string]map[string]any)
	appNames := make([]string, 0, len(g.Apps))
	for name := range g.Apps {
		appNames = append(appNames, name)
	}
	sort.Strings(appNames)
	for _, name := range appNames {
		app := g.Apps[name]
		if app.Framework == "" {
			continue
		}
		id := genome.FrameworkModuleID(app.Framework)
		if _, ok := params[id]; ok {
			output.Debug("framework already declared by an earlier app", "app", name, "framework", app.Framework)
			continue
		}
		params[id] = app.Parameters
	}

	for _, id := range g.FrameworkModuleIDs() {
		manifest, source, err := r.findManifest(ctx, id)
		if err != nil {
			return err
		}
		res.Manifests[id] = manifest
		addModule(res, &recipe.Module{
			ID:         id,
			Version:    manifest.Version,
			Source:     source,
			SourceKind: r.registry.Kinds()[source],
			Parameters: params[id],
		})
	}
	return nil
}

// findManifest probes every marketplace for a module id. Not-found moves to
// the next marketplace; any other failure is fatal.
func (r *Resolver) findManifest(ctx context.Context, moduleID string) (*marketplace.Manifest, string, error) {
	for _, name := range r.registry.Names() {
		adapter, err := r.registry.Get(name)
		if err != nil {
			return nil, "", err
		}
		manifest, err := adapter.LoadManifest(ctx, moduleID)
		if err == nil {
			return manifest, name, nil
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return nil, "", err
		}
	}
	return nil, "", errors.NewNotFoundError(
		fmt.Sprintf("module %q not found in any marketplace (searched: %v)", moduleID, r.registry.Names()),
		"",
		"Framework modules live under modules/framework/<name> in a marketplace.",
	)
}

// autoInclude closes the module set over manifest requires clauses: a
// bounded fixed point that loads each new module's manifest, records its
// prerequisites, and appends required modules with zero parameters. Hitting
// the pass cap degrades to a warning instead of failing the resolution.
func (r *Resolver) autoInclude(ctx context.Context, res *Resolution) error {
	processed := make(map[string]bool)

	for pass := 0; pass < autoIncludeCap; pass++ {
		changed := false

		snapshot := make([]*recipe.Module, len(res.Modules))
		copy(snapshot, res.Modules)

		for _, m := range snapshot {
			if processed[m.ID] {
				continue
			}
			manifest, err := r.manifestFor(ctx, res, m)
			if err != nil {
				return err
			}
			processed[m.ID] = true

			for _, req := range manifest.Requires {
				if _, ok := res.ByID[req]; ok {
					continue
				}
				output.Debug("auto-including required module", "module", m.ID, "requires", req)
				addModule(res, &recipe.Module{
					ID:         req,
					Source:     m.Source,
					SourceKind: m.SourceKind,
				})
				changed = true
			}
		}

		if !changed {
			return nil
		}
	}

	res.Warnings = append(res.Warnings, fmt.Sprintf(
		"auto-include did not settle after %d passes; the module set may be incomplete",
		autoIncludeCap,
	))
	output.Warn("auto-include pass cap reached", "cap", autoIncludeCap)

	// Modules appended on the last pass still need manifests so the graph
	// and engine can use the partial result.
	for _, m := range res.Modules {
		if processed[m.ID] {
			continue
		}
		if _, err := r.manifestFor(ctx, res, m); err != nil {
			return err
		}
	}
	return nil
}

// manifestFor loads and caches a module's manifest, filling the module's
// version from it and merging its prerequisites into the ones recipe
// expansion already derived from package-level dependencies.
func (r *Resolver) manifestFor(ctx context.Context, res *Resolution, m *recipe.Module) (*marketplace.Manifest, error) {
	manifest, ok := res.Manifests[m.ID]
	if !ok {
		adapter, err := r.registry.Get(m.Source)
		if err != nil {
			return nil, err
		}
		manifest, err = adapter.LoadManifest(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		res.Manifests[m.ID] = manifest
	}

	if m.Version == "" {
		m.Version = manifest.Version
	}
	for _, p := range manifest.Prerequisites {
		if !containsID(m.Prerequisites, p) {
			m.Prerequisites = append(m.Prerequisites, p)
		}
	}
	return manifest, nil
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
