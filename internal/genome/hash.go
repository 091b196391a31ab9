package genome

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// ComputeHash returns the canonical hash of a genome, prefixed "sha256:".
//
// The genome is serialized to JSON before hashing: struct fields marshal in a
// fixed order and map keys marshal sorted, so the hash is stable across YAML
// key ordering and repeated runs, and changes whenever any declared value
// changes.
func ComputeHash(g *Genome) (string, error) {
	canonical, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("canonicalizing genome: %w", err)
	}

	h := sha256.New()
	h.Write(canonical)

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}
