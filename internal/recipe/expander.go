package recipe

import (
	"fmt"
	"sort"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
	"github.com/appforge/cli/internal/output"
)

// Expander turns declared packages into concrete modules using the recipe
// books of their marketplaces.
type Expander struct {
	books map[string]*Book
	kinds map[string]string
}

// NewExpander creates an expander over the given recipe books, keyed by
// marketplace name. kinds maps marketplace names to their types and is
// carried onto resolved modules.
func NewExpander(books map[string]*Book, kinds map[string]string) *Expander {
	return &Expander{books: books, kinds: kinds}
}

// expansion is the per-Expand working state.
type expansion struct {
	declared map[string]genome.PackageConfig
	visited  map[string]struct{}
	inStack  map[string]struct{}
	resolved map[string]*Module

	// pkgModules maps each expanded package to its provider's module ids,
	// recorded whether or not the modules were first inserted here. Dependents
	// read it to turn package edges into module prerequisites.
	pkgModules map[string][]string

	order []string
}

// Expand resolves every declared package into its provider's modules,
// recursing into package-level dependencies. The returned modules are
// deduplicated by id and ordered by first insertion. A package-level
// dependency becomes module prerequisites: every module of the dependent
// provider lists the dependency package's modules, so the graph orders the
// two packages even when the module manifests are silent.
//
// Package-level cycles are skipped silently: two packages mutually
// referencing a shared base is a normal catalog shape, not an error. The
// back edge contributes no prerequisites, keeping the module graph acyclic.
// A missing recipe book, recipe, or provider aborts the whole expansion.
func (e *Expander) Expand(packages map[string]genome.PackageConfig) ([]*Module, error) {
	st := &expansion{
		declared:   packages,
		visited:    make(map[string]struct{}),
		inStack:    make(map[string]struct{}),
		resolved:   make(map[string]*Module),
		pkgModules: make(map[string][]string),
	}

	names := make([]string, 0, len(packages))
	for name := range packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.expandPackage(name, packages[name], st); err != nil {
			return nil, err
		}
	}

	modules := make([]*Module, 0, len(st.order))
	for _, id := range st.order {
		modules = append(modules, st.resolved[id])
	}
	return modules, nil
}

func (e *Expander) expandPackage(name string, cfg genome.PackageConfig, st *expansion) error {
	if _, ok := st.visited[name]; ok {
		output.Debug("package already visited, skipping", "package", name)
		return nil
	}
	st.visited[name] = struct{}{}
	st.inStack[name] = struct{}{}
	defer delete(st.inStack, name)

	book, ok := e.books[cfg.From]
	if !ok {
		return errors.NewNotFoundError(
			fmt.Sprintf("no recipe book loaded for marketplace %q (package %q)", cfg.From, name),
			"",
			"Check the package's from: field against the declared marketplaces.",
		)
	}

	rec, ok := book.Packages[name]
	if !ok {
		return errors.NewNotFoundError(
			fmt.Sprintf("marketplace %q has no recipe for package %q", cfg.From, name),
			"",
			"Check the package name against the marketplace's recipes.",
		)
	}

	providerName := cfg.Provider
	if providerName == "" {
		providerName = rec.DefaultProvider
	}

	provider, ok := rec.Providers[providerName]
	if !ok {
		return errors.NewValidationError(
			fmt.Sprintf("package %q has no provider %q; available: %v",
				name, providerName, providerNames(rec)),
			"",
			fmt.Sprintf("packages.%s.provider", name),
			"Pick one of the listed providers or omit provider to use the default.",
		)
	}

	ids := make([]string, 0, len(provider.Modules))
	for _, ref := range provider.Modules {
		ids = append(ids, ref.ID)
		if _, exists := st.resolved[ref.ID]; exists {
			// Same id means same entity; the first insertion wins.
			continue
		}
		st.resolved[ref.ID] = &Module{
			ID:         ref.ID,
			Version:    ref.Version,
			Source:     cfg.From,
			SourceKind: e.kinds[cfg.From],
			Parameters: cfg.Parameters,
		}
		st.order = append(st.order, ref.ID)
	}
	st.pkgModules[name] = ids

	// Dependencies inherit the source marketplace unless the genome declares
	// the package itself, in which case its declaration wins.
	for _, dep := range provider.Dependencies.Packages {
		if _, ok := st.inStack[dep]; ok {
			output.Debug("package dependency cycle, skipping back edge",
				"package", name, "dependency", dep)
			continue
		}
		depCfg, ok := st.declared[dep]
		if !ok {
			depCfg = genome.PackageConfig{From: cfg.From}
		}
		if err := e.expandPackage(dep, depCfg, st); err != nil {
			return err
		}
		for _, id := range ids {
			addPrerequisites(st.resolved[id], st.pkgModules[dep])
		}
	}

	return nil
}

// addPrerequisites appends the ids not already listed, never the module's own.
func addPrerequisites(m *Module, ids []string) {
	for _, id := range ids {
		if id == m.ID {
			continue
		}
		exists := false
		for _, p := range m.Prerequisites {
			if p == id {
				exists = true
				break
			}
		}
		if !exists {
			m.Prerequisites = append(m.Prerequisites, id)
		}
	}
}

func providerNames(rec Recipe) []string {
	names := make([]string, 0, len(rec.Providers))
	for name := range rec.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
