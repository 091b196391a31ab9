// Package recipe defines recipe books and the expansion of declared packages
// into concrete modules.
package recipe

// Book is a per-marketplace catalog mapping package names to providers and
// providers to concrete modules. Loaded once per resolution.
type Book struct {
	// Version is the recipe book schema version.
	Version int `json:"version" yaml:"version"`

	// Packages maps package names to their recipes.
	Packages map[string]Recipe `json:"packages" yaml:"packages"`

	// Capabilities maps capability names to per-provider package bindings.
	Capabilities map[string]map[string]CapabilityBinding `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// Recipe describes the providers available for one package.
type Recipe struct {
	// DefaultProvider applies when the genome does not pick one.
	DefaultProvider string `json:"defaultProvider" yaml:"defaultProvider"`

	// Providers maps provider names to their module lists.
	Providers map[string]Provider `json:"providers" yaml:"providers"`
}

// Provider lists the concrete modules one provider contributes, plus the
// packages those modules depend on.
type Provider struct {
	// Modules are the concrete modules installed for this provider.
	Modules []ModuleRef `json:"modules" yaml:"modules"`

	// Dependencies are package-level dependencies expanded recursively.
	Dependencies Dependencies `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// ModuleRef identifies a module within a marketplace.
type ModuleRef struct {
	ID      string `json:"id" yaml:"id"`
	Version string `json:"version" yaml:"version"`
}

// Dependencies holds a provider's package-level dependencies.
type Dependencies struct {
	Packages []string `json:"packages,omitempty" yaml:"packages,omitempty"`
}

// CapabilityBinding maps a capability+provider pair to a concrete runtime
// package (the thing a language package manager would install).
type CapabilityBinding struct {
	Package string `json:"package" yaml:"package"`
	Version string `json:"version" yaml:"version"`
}

// Module is a resolved module: the unit the graph orders and the engine
// executes. ID is the unique key across a whole resolution; two modules with
// the same id are the same entity.
type Module struct {
	// ID uniquely identifies the module, e.g. "auth/better-auth".
	ID string `json:"id"`

	// Version is the module version pinned by the recipe.
	Version string `json:"version"`

	// Source names the marketplace the module comes from.
	Source string `json:"source"`

	// SourceKind is the marketplace type (local, git, oci).
	SourceKind string `json:"sourceKind,omitempty"`

	// Prerequisites are module ids that must execute before this one.
	// Seeded from package-level dependencies during expansion, then merged
	// with the module manifest's prerequisites during resolution.
	Prerequisites []string `json:"prerequisites,omitempty"`

	// Parameters are the genome package parameters for template rendering.
	Parameters map[string]any `json:"parameters,omitempty"`
}
