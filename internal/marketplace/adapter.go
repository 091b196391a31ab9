// Package marketplace loads recipe books, module manifests, and templates
// from configured marketplace sources.
package marketplace

import (
	"context"
	"strings"

	"github.com/appforge/cli/internal/blueprint"
	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/recipe"
)

// Manifest is a module's declaration: identity, graph edges, required
// capabilities, and the blueprint the engine executes.
type Manifest struct {
	ID          string `json:"id" yaml:"id"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Prerequisites are module refs that must execute before this module.
	// Refs may be short or qualified; the graph normalizes them.
	Prerequisites []string `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`

	// Requires lists module ids pulled in by auto-inclusion.
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`

	// Actions is the module's blueprint in declaration order.
	Actions []blueprint.Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Adapter is one marketplace source.
type Adapter interface {
	// Name is the marketplace name from the genome.
	Name() string

	// Kind is the marketplace type (local, git, oci).
	Kind() string

	// LoadRecipeBook reads the marketplace's recipe catalog.
	LoadRecipeBook(ctx context.Context) (*recipe.Book, error)

	// LoadManifest reads one module's manifest.
	LoadManifest(ctx context.Context, moduleID string) (*Manifest, error)

	// LoadTemplate reads one template file from a module's templates
	// directory.
	LoadTemplate(ctx context.Context, moduleID, name string) (string, error)
}

// moduleTemplates binds an adapter and module id into the single-template
// loader the action dispatcher consumes.
type moduleTemplates struct {
	adapter  Adapter
	moduleID string
}

func (m moduleTemplates) LoadTemplate(ctx context.Context, name string) (string, error) {
	return m.adapter.LoadTemplate(ctx, m.moduleID, name)
}

// TemplatesFor returns a template loader scoped to one module.
func TemplatesFor(a Adapter, moduleID string) blueprint.TemplateLoader {
	return moduleTemplates{adapter: a, moduleID: moduleID}
}

// validateRef rejects ids and template names that would escape the
// marketplace root.
func validateRef(ref, field string) error {
	if ref == "" {
		return errors.NewValidationError("empty "+field, "", field, "")
	}
	if strings.HasPrefix(ref, "/") || strings.Contains(ref, "..") {
		return errors.NewValidationError(
			field+" must be a relative path without parent segments",
			ref,
			field,
			"",
		)
	}
	return nil
}
