package cmdutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
	"github.com/appforge/cli/internal/graph"
	"github.com/appforge/cli/internal/lockfile"
	"github.com/appforge/cli/internal/marketplace"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/plan"
	"github.com/appforge/cli/internal/recipe"
	"github.com/appforge/cli/internal/resolve"
)

// ResolveOpts holds the inputs for ResolveGenome.
type ResolveOpts struct {
	// Args from the cobra command (first arg is the project path).
	Args []string

	// GenomeFlag is the --genome flag value (empty if not set).
	GenomeFlag string

	// Strict turns the deprecated capability fallback into a hard error.
	Strict bool
}

// Result is the shared preamble output: everything the create, plan, lock,
// and vet commands need after resolution.
type Result struct {
	// GenomePath is the genome file that was loaded.
	GenomePath string

	// Genome is the parsed declaration.
	Genome *genome.Genome

	// ProjectRoot is the directory the engine materializes into.
	ProjectRoot string

	// Registry holds the marketplace adapters.
	Registry *marketplace.Registry

	// Resolution is the resolved module set with graph and order.
	Resolution *resolve.Resolution

	// Batches is the re-layered execution plan.
	Batches []plan.Batch

	// Capabilities lists the resolved capability bindings for genome
	// packages whose recipe books declare them.
	Capabilities []*recipe.CapabilityResult

	// Warnings aggregates resolution and capability warnings.
	Warnings []string
}

// ResolveGenome executes the common pipeline preamble shared by the create,
// plan, lock, and vet commands: load the genome, build the marketplace
// registry, resolve modules, plan batches, and resolve capability bindings.
func ResolveGenome(ctx context.Context, opts ResolveOpts) (*Result, error) {
	genomePath := ResolveGenomePath(opts.Args, opts.GenomeFlag)

	g, err := genome.Load(genomePath)
	if err != nil {
		return nil, err
	}

	registry, err := marketplace.NewRegistry(filepath.Dir(genomePath), g.Marketplaces)
	if err != nil {
		return nil, err
	}

	output.Debug("resolving genome",
		"genome", genomePath,
		"project", g.Project.Name,
		"marketplaces", len(g.Marketplaces),
	)

	resolution, err := resolve.New(registry).Resolve(ctx, g)
	if err != nil {
		return nil, err
	}

	batches := plan.Build(resolution.Order, resolution.ByID, resolution.Graph)

	capabilities, capWarnings, err := resolveCapabilities(g, resolution.Books, opts.Strict)
	if err != nil {
		return nil, err
	}

	warnings := append([]string(nil), resolution.Warnings...)
	warnings = append(warnings, capWarnings...)

	return &Result{
		GenomePath:   genomePath,
		Genome:       g,
		ProjectRoot:  genome.ProjectRoot(g, genomePath),
		Registry:     registry,
		Resolution:   resolution,
		Batches:      batches,
		Capabilities: capabilities,
		Warnings:     warnings,
	}, nil
}

// ResolveFromLock rebuilds the pipeline result from a stored lock file:
// module identities, prerequisites, parameters, and the batch layout all
// come from the lock, skipping recipe expansion and the graph build
// entirely. Manifests still load from the marketplaces because blueprints
// are not pinned; a manifest whose version moved past the pin is reported
// as a warning.
func ResolveFromLock(ctx context.Context, g *genome.Genome, genomePath string, stored *lockfile.LockFile) (*Result, error) {
	registry, err := marketplace.NewRegistry(filepath.Dir(genomePath), g.Marketplaces)
	if err != nil {
		return nil, err
	}

	output.Debug("reusing lock file",
		"genome", genomePath,
		"modules", len(stored.Modules),
		"resolvedAt", stored.ResolvedAt,
	)

	res := &resolve.Resolution{
		ByID:      make(map[string]*recipe.Module, len(stored.Modules)),
		Manifests: make(map[string]*marketplace.Manifest, len(stored.Modules)),
	}
	kinds := registry.Kinds()

	var warnings []string
	for _, pinned := range stored.Modules {
		adapter, err := registry.Get(pinned.Source)
		if err != nil {
			return nil, err
		}
		manifest, err := adapter.LoadManifest(ctx, pinned.ID)
		if err != nil {
			return nil, err
		}
		if manifest.Version != "" && pinned.Version != "" && manifest.Version != pinned.Version {
			warnings = append(warnings, fmt.Sprintf(
				"module %s is %s in marketplace %q but the lock pins %s",
				pinned.ID, manifest.Version, pinned.Source, pinned.Version))
		}

		m := &recipe.Module{
			ID:            pinned.ID,
			Version:       pinned.Version,
			Source:        pinned.Source,
			SourceKind:    kinds[pinned.Source],
			Prerequisites: append([]string(nil), pinned.Prerequisites...),
			Parameters:    pinned.Parameters,
		}
		res.Modules = append(res.Modules, m)
		res.ByID[m.ID] = m
		res.Manifests[m.ID] = manifest
		res.Order = append(res.Order, m.ID)
	}

	batches, err := batchesFromLock(stored, res)
	if err != nil {
		return nil, err
	}

	return &Result{
		GenomePath:  genomePath,
		Genome:      g,
		ProjectRoot: genome.ProjectRoot(g, genomePath),
		Registry:    registry,
		Resolution:  res,
		Batches:     batches,
		Warnings:    warnings,
	}, nil
}

// batchesFromLock replays the stored batch layout. A lock carrying only the
// flat executionPlan (the batches key is supplemental) gets re-planned from
// the pinned prerequisites instead.
func batchesFromLock(stored *lockfile.LockFile, res *resolve.Resolution) ([]plan.Batch, error) {
	if len(stored.Batches) == 0 {
		nodes := make([]graph.Node, 0, len(res.Modules))
		for _, m := range res.Modules {
			nodes = append(nodes, graph.Node{ID: m.ID, Prerequisites: m.Prerequisites})
		}
		res.Graph = graph.Build(nodes)
		return plan.Build(res.Order, res.ByID, res.Graph), nil
	}

	batches := make([]plan.Batch, 0, len(stored.Batches))
	for _, b := range stored.Batches {
		modules := make([]*recipe.Module, 0, len(b.Modules))
		for _, id := range b.Modules {
			m, ok := res.ByID[id]
			if !ok {
				return nil, errors.NewValidationError(
					fmt.Sprintf("lock file execution plan references unknown module %q", id),
					"",
					"executionPlan",
					"Re-run with --force-lock to re-pin the resolution.",
				)
			}
			modules = append(modules, m)
		}
		batches = append(batches, plan.Batch{
			Number:               b.Batch,
			Modules:              modules,
			CanExecuteInParallel: b.Parallel,
		})
	}
	return batches, nil
}

// resolveCapabilities binds every genome package that is a declared
// capability. Plain packages without a capability table entry are skipped;
// a declared capability that cannot be bound is fatal.
func resolveCapabilities(g *genome.Genome, books map[string]*recipe.Book, strict bool) ([]*recipe.CapabilityResult, []string, error) {
	names := make([]string, 0, len(g.Packages))
	for name := range g.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*recipe.CapabilityResult
	var warnings []string
	for _, name := range names {
		if !recipe.CapabilityDeclared(name, books) {
			continue
		}
		res, err := recipe.ResolveCapability(name, g, books, strict)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, res)
		if res.Warning != "" {
			warnings = append(warnings, res.Warning)
		}
	}
	return results, warnings, nil
}
