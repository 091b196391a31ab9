// Package graph builds the module dependency graph and derives a safe
// execution order from it.
package graph

import (
	"fmt"
	"sort"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/output"
)

// Node is one module's contribution to the graph: its id and the raw
// prerequisite references from its manifest.
type Node struct {
	ID            string
	Prerequisites []string
}

// Graph maps module ids to their normalized prerequisite sets. Built fresh
// per resolution, never shared across runs.
type Graph struct {
	order   []string
	prereqs map[string][]string
}

// Build constructs the graph from nodes, normalizing every prerequisite
// reference against the node id set. References that resolve to no known
// module are dropped here; whether they matter is decided downstream when
// something actually needs them.
func Build(nodes []Node) *Graph {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	normalizer := NewNormalizer(ids)

	g := &Graph{
		order:   make([]string, 0, len(nodes)),
		prereqs: make(map[string][]string, len(nodes)),
	}

	for _, n := range nodes {
		if _, ok := g.prereqs[n.ID]; ok {
			continue
		}
		g.order = append(g.order, n.ID)

		seen := make(map[string]struct{})
		prereqs := make([]string, 0, len(n.Prerequisites))
		for _, raw := range n.Prerequisites {
			id, ok := normalizer.Normalize(raw)
			if !ok {
				output.Debug("dropping unresolvable prerequisite", "module", n.ID, "reference", raw)
				continue
			}
			if id == n.ID {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			prereqs = append(prereqs, id)
		}
		g.prereqs[n.ID] = prereqs
	}

	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// IDs returns the node ids in insertion order.
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Prerequisites returns the normalized prerequisites of a node.
func (g *Graph) Prerequisites(id string) []string {
	prereqs := make([]string, len(g.prereqs[id]))
	copy(prereqs, g.prereqs[id])
	return prereqs
}

// DetectCycles runs a depth-first search over the graph and returns a cycle
// error naming the full path (a -> b -> c -> a) when one exists. A cycle is
// always fatal.
func (g *Graph) DetectCycles() error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[string]int, len(g.order))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		state[id] = inStack
		stack = append(stack, id)

		for _, prereq := range g.prereqs[id] {
			switch state[prereq] {
			case inStack:
				return errors.NewCycleError(cyclePath(stack, prereq))
			case unvisited:
				if err := visit(prereq); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.order {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}

// cyclePath slices the DFS stack from the first occurrence of start and
// closes the loop by repeating it.
func cyclePath(stack []string, start string) []string {
	idx := 0
	for i, id := range stack {
		if id == start {
			idx = i
			break
		}
	}
	path := make([]string, 0, len(stack)-idx+1)
	path = append(path, stack[idx:]...)
	path = append(path, start)
	return path
}

// TopologicalSort orders the graph so every module appears after all of its
// prerequisites (Kahn's algorithm). The ready queue is seeded with every
// node that has no prerequisites and kept sorted so output is deterministic.
//
// If fewer nodes come out than went in, a cycle survived cycle detection;
// that is reported with the ids left unsorted.
func (g *Graph) TopologicalSort() ([]string, error) {
	remaining := make(map[string]int, len(g.order))
	dependents := make(map[string][]string, len(g.order))

	for _, id := range g.order {
		prereqs := g.prereqs[id]
		remaining[id] = len(prereqs)
		for _, prereq := range prereqs {
			dependents[prereq] = append(dependents[prereq], id)
		}
	}

	var ready []string
	for _, id := range g.order {
		if remaining[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	sorted := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)

		var unlocked []string
		for _, dep := range dependents[id] {
			remaining[dep]--
			if remaining[dep] == 0 {
				unlocked = append(unlocked, dep)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
	}

	if len(sorted) != len(g.order) {
		var unsorted []string
		for _, id := range g.order {
			if remaining[id] > 0 {
				unsorted = append(unsorted, id)
			}
		}
		sort.Strings(unsorted)
		return nil, errors.Wrap(errors.ErrCycle,
			fmt.Sprintf("topological sort incomplete, unresolved modules: %v", unsorted))
	}

	return sorted, nil
}
