// Package graph builds and analyses the ADR dependency graph.
package graph

import (
	"sort"

	"github.com/starford/ansuz/internal/models"
)

// Graph holds two parallel adjacency structures over record ids.
//
// Forward maps an id to the set of ids that depend on it; Reverse maps an id
// to the set of ids it depends on. Every known record id is present as a node
// in both maps, including isolated nodes.
type Graph struct {
	Forward map[string]map[string]struct{}
	Reverse map[string]map[string]struct{}

	// Dangling lists depends-on references to ids that do not exist in the
	// corpus. They produce no edge.
	Dangling []models.Issue

	order []string // node ids in record order
}

// Build constructs the dependency graph from the loaded records.
//
// For every depends-on reference that resolves to a known id, a forward edge
// is added from the dependency to the dependent and a reverse edge from the
// dependent to the dependency. References to unknown ids are surfaced as
// DANGLING_REFERENCE issues. Cycles are not rejected here; detection is a
// separate pass.
func Build(records []models.DocumentRecord) *Graph {
	g := &Graph{
		Forward: make(map[string]map[string]struct{}, len(records)),
		Reverse: make(map[string]map[string]struct{}, len(records)),
	}

	for _, r := range records {
		if _, ok := g.Forward[r.ID]; !ok {
			g.Forward[r.ID] = make(map[string]struct{})
			g.Reverse[r.ID] = make(map[string]struct{})
			g.order = append(g.order, r.ID)
		}
	}

	for _, r := range records {
		for _, dep := range r.DependsOn {
			if _, known := g.Forward[dep]; !known {
				g.Dangling = append(g.Dangling, models.Issue{
					Type:     models.IssueDanglingReference,
					SourceID: r.ID,
					TargetID: dep,
					Detail:   "depends-on references an id not present in the corpus",
				})
				continue
			}
			g.Forward[dep][r.ID] = struct{}{}
			g.Reverse[r.ID][dep] = struct{}{}
		}
	}

	return g
}

// Nodes returns all node ids in record order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns every dependency edge, sorted for stable output.
func (g *Graph) Edges() []models.Edge {
	var out []models.Edge
	for src, deps := range g.Forward {
		for dst := range deps {
			out = append(out, models.Edge{Source: src, Target: dst})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Dependents returns the ids directly depending on id, sorted.
func (g *Graph) Dependents(id string) []string {
	return sortedKeys(g.Forward[id])
}

// Dependencies returns the ids that id directly depends on, sorted.
func (g *Graph) Dependencies(id string) []string {
	return sortedKeys(g.Reverse[id])
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
