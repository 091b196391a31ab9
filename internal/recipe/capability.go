package recipe

import (
	"fmt"
	"sort"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/genome"
)

// CapabilityResult is the concrete binding a capability resolves to.
type CapabilityResult struct {
	// Capability is the abstract name that was resolved.
	Capability string

	// Provider is the chosen provider name.
	Provider string

	// Package is the runtime package the provider installs.
	Package string

	// Version is the package version constraint.
	Version string

	// Warning is set when resolution used the deprecated static fallback
	// table. Callers surface it in their result objects.
	Warning string
}

// legacyCapabilityTable is the deprecated static fallback consulted only when
// no recipe book is available at all. Resolution through this table is
// reported as a warning (or rejected outright in strict mode).
var legacyCapabilityTable = map[string]map[string]CapabilityBinding{
	"auth": {
		"better-auth": {Package: "better-auth", Version: "^1.0.0"},
		"lucia":       {Package: "lucia", Version: "^3.0.0"},
	},
	"database": {
		"drizzle": {Package: "drizzle-orm", Version: "^0.36.0"},
		"prisma":  {Package: "prisma", Version: "^6.0.0"},
	},
	"payments": {
		"stripe": {Package: "stripe", Version: "^17.0.0"},
	},
}

// ResolveCapability maps an abstract capability name to a concrete
// provider/package pair.
//
// Resolution order: the genome's chosen provider for the capability, then the
// recipe books' capability tables. The deprecated static fallback applies
// only when no recipe book is available; it produces a warning in the result,
// or a hard error with strict set. With books loaded, a capability they do
// not bind for the chosen provider is a fatal resolution error listing the
// providers that are available.
func ResolveCapability(capability string, g *genome.Genome, books map[string]*Book, strict bool) (*CapabilityResult, error) {
	provider := chosenProvider(capability, g, books)
	if provider == "" {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("no provider selected for capability %q", capability),
			"",
			"Declare the capability as a package in the genome, or add a defaultProvider to its recipe.",
		)
	}

	for _, name := range sortedBookNames(books) {
		book := books[name]
		bindings, ok := book.Capabilities[capability]
		if !ok {
			continue
		}
		if binding, ok := bindings[provider]; ok {
			return &CapabilityResult{
				Capability: capability,
				Provider:   provider,
				Package:    binding.Package,
				Version:    binding.Version,
			}, nil
		}
	}

	if bindings, ok := legacyCapabilityTable[capability]; ok && len(books) == 0 {
		if binding, ok := bindings[provider]; ok {
			warning := fmt.Sprintf(
				"capability %q resolved through the deprecated static table (provider %q); add a capabilities entry to the recipe book",
				capability, provider,
			)
			if strict {
				return nil, errors.NewValidationError(
					warning,
					"",
					"",
					"Strict mode rejects the static fallback. Add the binding to a recipe book.",
				)
			}
			return &CapabilityResult{
				Capability: capability,
				Provider:   provider,
				Package:    binding.Package,
				Version:    binding.Version,
				Warning:    warning,
			}, nil
		}
	}

	return nil, errors.NewNotFoundError(
		fmt.Sprintf("capability %q has no binding for provider %q; available providers: %v",
			capability, provider, availableProviders(capability, books)),
		"",
		"Pick one of the listed providers for the capability.",
	)
}

// CapabilityDeclared reports whether any recipe book declares bindings for
// the capability; with no books available the deprecated static table stands
// in. Packages without a declared capability are plain packages and skip
// capability resolution.
func CapabilityDeclared(capability string, books map[string]*Book) bool {
	for _, book := range books {
		if len(book.Capabilities[capability]) > 0 {
			return true
		}
	}
	return len(books) == 0 && len(legacyCapabilityTable[capability]) > 0
}

// chosenProvider returns the provider the genome picks for a capability,
// falling back to the recipe books' defaultProvider.
func chosenProvider(capability string, g *genome.Genome, books map[string]*Book) string {
	if pkg, ok := g.Packages[capability]; ok && pkg.Provider != "" {
		return pkg.Provider
	}

	for _, name := range sortedBookNames(books) {
		if rec, ok := books[name].Packages[capability]; ok && rec.DefaultProvider != "" {
			return rec.DefaultProvider
		}
	}

	return ""
}

// availableProviders lists every provider any book binds to the capability,
// consulting the static table only when no books are loaded.
func availableProviders(capability string, books map[string]*Book) []string {
	seen := make(map[string]struct{})
	for _, book := range books {
		for provider := range book.Capabilities[capability] {
			seen[provider] = struct{}{}
		}
	}
	if len(books) == 0 {
		for provider := range legacyCapabilityTable[capability] {
			seen[provider] = struct{}{}
		}
	}

	providers := make([]string, 0, len(seen))
	for provider := range seen {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}

func sortedBookNames(books map[string]*Book) []string {
	names := make([]string, 0, len(books))
	for name := range books {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
