// Package lockfile reads and writes genome.lock.json, the pinned result of a
// resolution: module versions, integrity hashes, and the execution plan.
package lockfile

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/appforge/cli/internal/blueprint"
	"github.com/appforge/cli/internal/genome"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/plan"
	"github.com/appforge/cli/internal/resolve"
)

// FileName is the lock file's name next to genome.yaml.
const FileName = "genome.lock.json"

// SchemaVersion is the lock file schema this build reads and writes.
const SchemaVersion = 1

// LockFile pins one resolution.
type LockFile struct {
	Version      int                    `json:"version"`
	GenomeHash   string                 `json:"genomeHash"`
	ResolvedAt   time.Time              `json:"resolvedAt"`
	Marketplaces map[string]Marketplace `json:"marketplaces,omitempty"`
	Modules      []Module               `json:"modules"`
	Plan         []string               `json:"executionPlan"`
	Batches      []Batch                `json:"batches,omitempty"`
	Dependencies map[string]string      `json:"dependencies,omitempty"`
}

// Marketplace records a marketplace source as declared at resolution time.
type Marketplace struct {
	Type      string `json:"type"`
	Path      string `json:"path,omitempty"`
	URL       string `json:"url,omitempty"`
	Ref       string `json:"ref,omitempty"`
	Integrity string `json:"integrity"`
}

// Module pins one resolved module. Parameters are carried so a run that
// reuses the lock renders templates with the same inputs as the run that
// wrote it.
type Module struct {
	ID            string         `json:"id"`
	Version       string         `json:"version"`
	Source        string         `json:"source"`
	Integrity     string         `json:"integrity"`
	Prerequisites []string       `json:"prerequisites,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// Batch records one step of the supplemental batch layout. Plan carries the
// authoritative flat execution order; the batches only let a reusing run
// skip re-planning.
type Batch struct {
	Batch    int      `json:"batch"`
	Modules  []string `json:"modules"`
	Parallel bool     `json:"parallel"`
}

// ModuleIntegrity hashes a module's pinned identity.
func ModuleIntegrity(id, version, source string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s@%s:%s", id, version, source)))
	return fmt.Sprintf("sha256:%x", sum)
}

// MarketplaceIntegrity hashes a marketplace declaration so a reused lock can
// be checked against moved or re-pointed sources.
func MarketplaceIntegrity(name string, m genome.Marketplace) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%s:%s", name, m.Type, m.Path, m.URL, m.Ref)))
	return fmt.Sprintf("sha256:%x", sum)
}

// Build assembles a lock file from a finished resolution and its plan.
// Modules are stored in execution order with normalized prerequisites.
func Build(g *genome.Genome, res *resolve.Resolution, batches []plan.Batch, resolvedAt time.Time) (*LockFile, error) {
	hash, err := genome.ComputeHash(g)
	if err != nil {
		return nil, err
	}

	lock := &LockFile{
		Version:    SchemaVersion,
		GenomeHash: hash,
		ResolvedAt: resolvedAt.UTC().Truncate(time.Second),
	}

	if len(g.Marketplaces) > 0 {
		lock.Marketplaces = make(map[string]Marketplace, len(g.Marketplaces))
		for name, m := range g.Marketplaces {
			kind := m.Type
			if kind == "" {
				kind = "local"
			}
			lock.Marketplaces[name] = Marketplace{
				Type:      kind,
				Path:      m.Path,
				URL:       m.URL,
				Ref:       m.Ref,
				Integrity: MarketplaceIntegrity(name, m),
			}
		}
	}

	lock.Modules = make([]Module, 0, len(res.Order))
	for _, id := range res.Order {
		m, ok := res.ByID[id]
		if !ok {
			continue
		}
		lock.Modules = append(lock.Modules, Module{
			ID:            m.ID,
			Version:       m.Version,
			Source:        m.Source,
			Integrity:     ModuleIntegrity(m.ID, m.Version, m.Source),
			Prerequisites: res.Graph.Prerequisites(m.ID),
			Parameters:    m.Parameters,
		})
	}

	lock.Plan = lock.ModuleIDs()

	lock.Batches = make([]Batch, 0, len(batches))
	for _, b := range batches {
		lock.Batches = append(lock.Batches, Batch{
			Batch:    b.Number,
			Modules:  b.IDs(),
			Parallel: b.CanExecuteInParallel,
		})
	}

	lock.Dependencies = collectDependencies(res)

	return lock, nil
}

// collectDependencies aggregates the runtime packages the blueprints will
// stage, in execution order with first-wins on version conflicts.
func collectDependencies(res *resolve.Resolution) map[string]string {
	deps := make(map[string]string)

	record := func(name, version string) {
		if name == "" {
			return
		}
		if version == "" {
			version = "latest"
		}
		if existing, ok := deps[name]; ok {
			if existing != version {
				output.Debug("dependency version already pinned",
					"package", name, "kept", existing, "ignored", version)
			}
			return
		}
		deps[name] = version
	}

	for _, id := range res.Order {
		manifest, ok := res.Manifests[id]
		if !ok {
			continue
		}
		for _, action := range manifest.Actions {
			switch action.Kind {
			case blueprint.KindInstallPackages:
				for _, p := range action.Packages {
					record(p.Name, p.Version)
				}
			case blueprint.KindAddDependency:
				record(action.Name, action.Version)
			}
		}
	}

	if len(deps) == 0 {
		return nil
	}
	return deps
}

// Read loads a lock file. Any failure — missing file, unreadable content,
// schema mismatch — yields nil: the lock is simply treated as absent.
func Read(path string) *LockFile {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			output.Debug("lock file unreadable, treating as absent", "path", path, "error", err)
		}
		return nil
	}

	var lock LockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		output.Debug("lock file is not valid JSON, treating as absent", "path", path, "error", err)
		return nil
	}
	if lock.Version != SchemaVersion {
		output.Debug("lock file schema mismatch, treating as absent",
			"path", path, "version", lock.Version, "supported", SchemaVersion)
		return nil
	}

	return &lock
}

// Write persists the lock atomically: full content to a temp file in the
// same directory, then rename over the target.
func (l *LockFile) Write(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding lock file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".genome.lock.*")
	if err != nil {
		return fmt.Errorf("creating temp lock file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp lock file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing lock file: %w", err)
	}
	return nil
}

// ModuleIDs returns the pinned module ids in stored order.
func (l *LockFile) ModuleIDs() []string {
	ids := make([]string, len(l.Modules))
	for i, m := range l.Modules {
		ids[i] = m.ID
	}
	return ids
}

// CanReuse reports whether this lock still describes the genome: the stored
// hash matches the fresh one and every framework-implied module is pinned.
func (l *LockFile) CanReuse(freshHash string, frameworkIDs []string) bool {
	if l == nil {
		return false
	}
	if l.GenomeHash != freshHash {
		output.Debug("lock hash differs from genome", "stored", l.GenomeHash, "fresh", freshHash)
		return false
	}

	pinned := make(map[string]bool, len(l.Modules))
	for _, m := range l.Modules {
		pinned[m.ID] = true
	}
	for _, id := range frameworkIDs {
		if !pinned[id] {
			output.Debug("framework module missing from lock", "module", id)
			return false
		}
	}
	return true
}
