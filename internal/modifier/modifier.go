// Package modifier implements the named content modifiers that ENHANCE_FILE
// and the package-level actions delegate to. Each modifier rewrites one
// staged file inside a module's virtual file system.
package modifier

import (
	"fmt"
	"sort"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/vfs"
)

// Input carries the payload for one modifier application. Text modifiers use
// Content; structural modifiers use Fragment.
type Input struct {
	Content  string
	Fragment map[string]any
}

// Modifier applies one kind of in-place enhancement to a staged file.
type Modifier interface {
	// Name is the identifier actions reference.
	Name() string

	// Apply rewrites the file at path inside the staging area.
	Apply(fs *vfs.VFS, path string, in Input) error
}

// Registry holds the available modifiers by name.
type Registry struct {
	modifiers map[string]Modifier
}

// NewRegistry returns a registry with all built-in modifiers registered.
func NewRegistry() *Registry {
	r := &Registry{modifiers: make(map[string]Modifier)}
	for _, m := range []Modifier{
		jsonMerge{},
		packageManifest{},
		envFile{},
		textAppend{},
		textPrepend{},
	} {
		r.modifiers[m.Name()] = m
	}
	return r
}

// Register adds a modifier. Duplicate names are rejected.
func (r *Registry) Register(m Modifier) error {
	if _, ok := r.modifiers[m.Name()]; ok {
		return errors.NewConflictError(
			fmt.Sprintf("modifier %q is already registered", m.Name()),
			nil,
			"",
		)
	}
	r.modifiers[m.Name()] = m
	return nil
}

// Get returns the modifier registered under name.
func (r *Registry) Get(name string) (Modifier, error) {
	m, ok := r.modifiers[name]
	if !ok {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("modifier %q not found (available: %v)", name, r.Names()),
			"",
			"Check the action's modifier field against the built-in modifiers.",
		)
	}
	return m, nil
}

// Names returns the registered modifier names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modifiers))
	for name := range r.modifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
