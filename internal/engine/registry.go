package engine

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/appforge/cli/internal/vfs"
)

// FlushRegistry tracks which module last flushed each path, keyed by a
// content fingerprint. When a later module rewrites a path with different
// content, Record returns a warning naming both modules.
type FlushRegistry struct {
	mu      sync.Mutex
	entries map[string]flushEntry
}

type flushEntry struct {
	moduleID string
	sum      uint64
}

// NewFlushRegistry creates an empty registry.
func NewFlushRegistry() *FlushRegistry {
	return &FlushRegistry{entries: make(map[string]flushEntry)}
}

// Record registers the flushed files of one module and returns warnings for
// every path another module already wrote with different content. Identical
// rewrites stay silent.
func (r *FlushRegistry) Record(moduleID string, files []vfs.FlushedFile) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var warnings []string
	for _, f := range files {
		sum := xxhash.Sum64String(f.Content)
		if prev, ok := r.entries[f.Path]; ok && prev.moduleID != moduleID && prev.sum != sum {
			warnings = append(warnings, fmt.Sprintf(
				"%s overwrote %s (previously written by %s)", moduleID, f.Path, prev.moduleID))
		}
		r.entries[f.Path] = flushEntry{moduleID: moduleID, sum: sum}
	}
	return warnings
}

// Len reports how many distinct paths have been flushed.
func (r *FlushRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
