// Package plan turns a topologically sorted module set into execution
// batches: groups that can run in parallel, ordered so every module's
// prerequisites land in earlier batches.
package plan

import (
	"strings"

	"github.com/appforge/cli/internal/graph"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/recipe"
)

// Batch is one execution step. Modules within a parallel batch are mutually
// independent.
type Batch struct {
	// Number is the 1-based position after re-layering.
	Number int

	// Modules run in this batch, in topological order.
	Modules []*recipe.Module

	// CanExecuteInParallel allows concurrent module execution. Feature
	// batches are always sequential.
	CanExecuteInParallel bool
}

// IDs returns the batch's module ids in order.
func (b Batch) IDs() []string {
	ids := make([]string, len(b.Modules))
	for i, m := range b.Modules {
		ids[i] = m.ID
	}
	return ids
}

// layer classifies a module by its id's leading segment.
type layer int

const (
	layerPlain layer = iota
	layerConnector
	layerFeature
)

// classify maps the id's first segment onto a layer. Connector modules glue
// two scaffolded packages together; feature modules mutate shared
// scaffolding and must not run concurrently.
func classify(id string) layer {
	head := id
	if idx := strings.Index(id, "/"); idx >= 0 {
		head = id[:idx]
	}
	switch head {
	case "connector", "connectors":
		return layerConnector
	case "feature", "features":
		return layerFeature
	default:
		return layerPlain
	}
}

// Build batches the topological order against the graph. The first pass
// groups modules into dependency levels: level k holds every module whose
// prerequisites all sit in levels below k. The second pass re-layers by
// module class, moving connectors after all plain batches and collapsing
// features into a single sequential batch at the end. Batch numbers are
// assigned after re-layering.
func Build(order []string, byID map[string]*recipe.Module, g *graph.Graph) []Batch {
	if len(order) == 0 {
		return nil
	}

	levels := levelGroups(order, g)

	var plain, connectors [][]string
	var features []string
	for _, group := range levels {
		var plainGroup, connectorGroup []string
		for _, id := range group {
			switch classify(id) {
			case layerConnector:
				connectorGroup = append(connectorGroup, id)
			case layerFeature:
				features = append(features, id)
			default:
				plainGroup = append(plainGroup, id)
			}
		}
		if len(plainGroup) > 0 {
			plain = append(plain, plainGroup)
		}
		if len(connectorGroup) > 0 {
			connectors = append(connectors, connectorGroup)
		}
	}

	var batches []Batch
	appendGroup := func(ids []string, parallel bool) {
		modules := make([]*recipe.Module, 0, len(ids))
		for _, id := range ids {
			m, ok := byID[id]
			if !ok {
				output.Debug("planned module missing from resolution, dropping", "module", id)
				continue
			}
			modules = append(modules, m)
		}
		if len(modules) == 0 {
			return
		}
		batches = append(batches, Batch{
			Number:               len(batches) + 1,
			Modules:              modules,
			CanExecuteInParallel: parallel && len(modules) > 1,
		})
	}

	for _, group := range plain {
		appendGroup(group, true)
	}
	for _, group := range connectors {
		appendGroup(group, true)
	}
	if len(features) > 0 {
		appendGroup(features, false)
	}

	return batches
}

// levelGroups computes dependency levels over a topological order: a
// module's level is one past its deepest prerequisite.
func levelGroups(order []string, g *graph.Graph) [][]string {
	level := make(map[string]int, len(order))
	maxLevel := 0
	for _, id := range order {
		l := 0
		for _, p := range g.Prerequisites(id) {
			if pl, ok := level[p]; ok && pl+1 > l {
				l = pl + 1
			}
		}
		level[id] = l
		if l > maxLevel {
			maxLevel = l
		}
	}

	groups := make([][]string, maxLevel+1)
	for _, id := range order {
		groups[level[id]] = append(groups[level[id]], id)
	}
	return groups
}

// TotalModules counts the modules across all batches.
func TotalModules(batches []Batch) int {
	total := 0
	for _, b := range batches {
		total += len(b.Modules)
	}
	return total
}
