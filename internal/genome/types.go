// Package genome defines the user-authored project declaration and its loader.
package genome

import "sort"

// Genome is the user's declaration of the desired application: packages bound
// to provider choices, apps composed from those packages, and the catalog
// sources that supply them. It is immutable after load.
type Genome struct {
	// Project holds project-level metadata.
	Project Project `json:"project" yaml:"project"`

	// Marketplaces names the catalog sources recipes and modules come from.
	Marketplaces map[string]Marketplace `json:"marketplaces,omitempty" yaml:"marketplaces,omitempty"`

	// Apps declares the applications composed from packages.
	Apps map[string]App `json:"apps,omitempty" yaml:"apps,omitempty"`

	// Packages declares the business-level capabilities the project wants.
	Packages map[string]PackageConfig `json:"packages,omitempty" yaml:"packages,omitempty"`
}

// Project holds project metadata.
type Project struct {
	// Name is the project name. Required.
	Name string `json:"name" yaml:"name"`

	// Version is the initial project version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Description is a free-form project description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Path is the project root the engine materializes into.
	// Defaults to ./<name> when empty.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Marketplace describes one catalog source.
type Marketplace struct {
	// Type is the source kind: local, git, or oci.
	Type string `json:"type" yaml:"type"`

	// Path is the root directory for local marketplaces.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// URL locates git and oci marketplaces.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Ref pins git marketplaces to a branch, tag, or commit.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// App declares one application composed from packages.
type App struct {
	// Framework selects the scaffolding framework module for this app.
	Framework string `json:"framework,omitempty" yaml:"framework,omitempty"`

	// Dependencies lists package names (keys of Genome.Packages) the app uses.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Parameters are app-level template parameters.
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// PackageConfig binds a declared package to a catalog source and provider.
type PackageConfig struct {
	// From names the marketplace the package's recipe comes from. Required.
	From string `json:"from" yaml:"from"`

	// Provider picks a provider; the recipe's defaultProvider applies when empty.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// Parameters are passed to the provider's modules at render time.
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// MarketplaceNames returns the declared marketplace names in sorted order.
func (g *Genome) MarketplaceNames() []string {
	names := make([]string, 0, len(g.Marketplaces))
	for name := range g.Marketplaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FrameworkModuleIDs returns the module ids implied by app framework
// selections, deduplicated and sorted. An app with framework "nextjs"
// implies the module "framework/nextjs".
func (g *Genome) FrameworkModuleIDs() []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(g.Apps))
	for _, app := range g.Apps {
		if app.Framework == "" {
			continue
		}
		id := FrameworkModuleID(app.Framework)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FrameworkModuleID maps a framework name to its module id.
func FrameworkModuleID(framework string) string {
	return "framework/" + framework
}
