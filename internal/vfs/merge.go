package vfs

import (
	"encoding/json"
	"fmt"

	"github.com/appforge/cli/internal/errors"
)

// MergeJSON deep-merges a fragment into a staged JSON document. The file must
// exist staged or on disk and must parse as a JSON object. Nested objects
// merge key by key; scalars and arrays from the fragment overwrite.
func (v *VFS) MergeJSON(p string, fragment map[string]any) error {
	current, err := v.ReadFile(p)
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(current), &doc); err != nil {
		return errors.NewValidationError(
			fmt.Sprintf("file %s is not a JSON object: %v", normalize(p), err),
			normalize(p),
			"",
			"",
		)
	}

	merged := mergeMaps(doc, fragment)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding merged %s: %w", normalize(p), err)
	}

	return v.WriteFile(p, string(data)+"\n")
}

// mergeMaps merges src into dst recursively. Both maps are treated as
// immutable; the result is a fresh map.
func mergeMaps(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, val := range dst {
		out[k] = val
	}
	for k, val := range src {
		existing, ok := out[k]
		if !ok {
			out[k] = val
			continue
		}
		dstMap, dstOK := existing.(map[string]any)
		srcMap, srcOK := val.(map[string]any)
		if dstOK && srcOK {
			out[k] = mergeMaps(dstMap, srcMap)
			continue
		}
		out[k] = val
	}
	return out
}
