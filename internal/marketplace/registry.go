package marketplace

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
)

// Registry holds the adapter for every marketplace the genome declares.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds adapters from the genome's marketplace declarations.
// Relative local paths resolve against baseDir, the genome file's directory.
// Remote marketplace types are declared in the schema but have no adapter
// yet.
func NewRegistry(baseDir string, marketplaces map[string]genome.Marketplace) (*Registry, error) {
	adapters := make(map[string]Adapter, len(marketplaces))

	for _, name := range sortedNames(marketplaces) {
		m := marketplaces[name]
		switch m.Type {
		case "", KindLocal:
			root := m.Path
			if !filepath.IsAbs(root) {
				root = filepath.Join(baseDir, root)
			}
			adapters[name] = NewLocal(name, root)

		case "git", "oci":
			return nil, errors.NewValidationError(
				fmt.Sprintf("marketplace %q has type %q, which is not supported yet", name, m.Type),
				"",
				fmt.Sprintf("marketplaces.%s.type", name),
				"Only local marketplaces are supported; vendor the marketplace into the repository.",
			)

		default:
			return nil, errors.NewValidationError(
				fmt.Sprintf("marketplace %q has unknown type %q", name, m.Type),
				"",
				fmt.Sprintf("marketplaces.%s.type", name),
				"Use local, git, or oci.",
			)
		}
	}

	return &Registry{adapters: adapters}, nil
}

// Get returns the adapter for a marketplace name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("marketplace %q not found (available: %v)", name, r.Names()),
			"",
			"Declare the marketplace in the genome's marketplaces section.",
		)
	}
	return a, nil
}

// Names returns the registered marketplace names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Kinds maps marketplace names to their adapter kinds.
func (r *Registry) Kinds() map[string]string {
	kinds := make(map[string]string, len(r.adapters))
	for name, a := range r.adapters {
		kinds[name] = a.Kind()
	}
	return kinds
}

func sortedNames(m map[string]genome.Marketplace) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
