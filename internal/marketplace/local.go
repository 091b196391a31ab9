package marketplace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/recipe"
)

// KindLocal is the only marketplace type with a full adapter.
const KindLocal = "local"

const (
	recipeBookFile = "recipes.yaml"
	manifestFile   = "module.yaml"
	modulesDir     = "modules"
	templatesDir   = "templates"
)

// Local reads a marketplace laid out as a directory tree:
//
//	<root>/recipes.yaml
//	<root>/modules/<id>/module.yaml
//	<root>/modules/<id>/templates/<name>
//
// Template reads are deduplicated and cached; parallel batches hit the same
// handful of templates from many goroutines.
type Local struct {
	name string
	root string

	group     singleflight.Group
	mu        sync.RWMutex
	templates map[string]string
}

// NewLocal creates a local adapter named after its genome entry.
func NewLocal(name, root string) *Local {
	return &Local{
		name:      name,
		root:      root,
		templates: make(map[string]string),
	}
}

func (l *Local) Name() string { return l.name }

func (l *Local) Kind() string { return KindLocal }

// Root returns the marketplace directory.
func (l *Local) Root() string { return l.root }

// LoadRecipeBook reads and parses <root>/recipes.yaml.
func (l *Local) LoadRecipeBook(_ context.Context) (*recipe.Book, error) {
	path := filepath.Join(l.root, recipeBookFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(
				fmt.Sprintf("marketplace %q has no recipe book", l.name),
				path,
				"Every marketplace root needs a recipes.yaml.",
			)
		}
		return nil, fmt.Errorf("reading recipe book for %s: %w", l.name, err)
	}

	var book recipe.Book
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, errors.NewValidationError(
			fmt.Sprintf("recipe book for marketplace %q is not valid YAML: %v", l.name, err),
			path,
			"",
			"",
		)
	}
	if book.Version == 0 {
		book.Version = 1
	}

	return &book, nil
}

// LoadManifest reads <root>/modules/<id>/module.yaml. A manifest with no id
// inherits the directory's module id; a mismatched id is rejected.
func (l *Local) LoadManifest(_ context.Context, moduleID string) (*Manifest, error) {
	if err := validateRef(moduleID, "module id"); err != nil {
		return nil, err
	}

	path := filepath.Join(l.root, modulesDir, filepath.FromSlash(moduleID), manifestFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(
				fmt.Sprintf("module %q not found in marketplace %q", moduleID, l.name),
				path,
				"Check the module id against the marketplace's modules directory.",
			)
		}
		return nil, fmt.Errorf("reading manifest for %s: %w", moduleID, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.NewValidationError(
			fmt.Sprintf("manifest for module %q is not valid YAML: %v", moduleID, err),
			path,
			"",
			"",
		)
	}

	if m.ID == "" {
		m.ID = moduleID
	} else if m.ID != moduleID {
		return nil, errors.NewValidationError(
			fmt.Sprintf("manifest declares id %q but lives under %q", m.ID, moduleID),
			path,
			"id",
			"",
		)
	}

	return &m, nil
}

// LoadTemplate reads <root>/modules/<id>/templates/<name>, caching results.
func (l *Local) LoadTemplate(_ context.Context, moduleID, name string) (string, error) {
	if err := validateRef(moduleID, "module id"); err != nil {
		return "", err
	}
	if err := validateRef(name, "template name"); err != nil {
		return "", err
	}

	key := moduleID + "::" + name

	l.mu.RLock()
	cached, ok := l.templates[key]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		path := filepath.Join(l.root, modulesDir, filepath.FromSlash(moduleID), templatesDir, filepath.FromSlash(name))

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewNotFoundError(
					fmt.Sprintf("template %q not found for module %q", name, moduleID),
					path,
					"",
				)
			}
			return nil, fmt.Errorf("reading template %s for %s: %w", name, moduleID, err)
		}

		content := string(data)
		l.mu.Lock()
		l.templates[key] = content
		l.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
