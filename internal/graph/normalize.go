package graph

import (
	"sort"
	"strings"
)

// Normalizer resolves raw prerequisite references against a known module id
// set. It is the single source of truth for id matching: callers never do
// their own string manipulation on module ids.
//
// Three forms are accepted, tried in order:
//
//  1. exact match;
//  2. suffix match — the reference is a short form (category/name) of a
//     fully-qualified known id (group/category/name);
//  3. de-prefixed match — the reference is fully qualified and a known id is
//     its short form.
type Normalizer struct {
	known  map[string]struct{}
	sorted []string
}

// NewNormalizer builds a normalizer over the known id set.
func NewNormalizer(ids []string) *Normalizer {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	sorted := make([]string, 0, len(known))
	for id := range known {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	return &Normalizer{known: known, sorted: sorted}
}

// Normalize resolves raw to a known module id. The second return is false
// when no known id matches; callers drop such references.
//
// Suffix matches scan ids in sorted order so an ambiguous short form always
// resolves the same way.
func (n *Normalizer) Normalize(raw string) (string, bool) {
	if _, ok := n.known[raw]; ok {
		return raw, true
	}

	suffix := "/" + raw
	for _, id := range n.sorted {
		if strings.HasSuffix(id, suffix) {
			return id, true
		}
	}

	if idx := strings.Index(raw, "/"); idx >= 0 {
		short := raw[idx+1:]
		if _, ok := n.known[short]; ok {
			return short, true
		}
	}

	return "", false
}
