// Package testutil provides shared helpers for CLI tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file with the given content under dir, creating parent
// directories as needed, and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// ModuleFixture describes one marketplace module for tests.
type ModuleFixture struct {
	// ID is the module id, which doubles as its directory path.
	ID string

	// Manifest is the module.yaml content.
	Manifest string

	// Templates maps template file names to their content.
	Templates map[string]string
}

// WriteMarketplace lays out a local marketplace root under dir: a recipe
// book plus each module's manifest and templates. It returns dir.
func WriteMarketplace(t *testing.T, dir, recipes string, modules ...ModuleFixture) string {
	t.Helper()

	WriteFile(t, dir, "recipes.yaml", recipes)
	for _, m := range modules {
		base := filepath.Join("modules", filepath.FromSlash(m.ID))
		WriteFile(t, dir, filepath.Join(base, "module.yaml"), m.Manifest)
		for name, content := range m.Templates {
			WriteFile(t, dir, filepath.Join(base, "templates", name), content)
		}
	}
	return dir
}

// WriteGenome writes a genome.yaml under dir and returns its path.
func WriteGenome(t *testing.T, dir, content string) string {
	t.Helper()
	return WriteFile(t, dir, "genome.yaml", content)
}
