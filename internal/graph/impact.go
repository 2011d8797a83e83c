package graph

import (
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// Scoring holds the impact heuristic knobs. The defaults mirror the
// long-standing constants; a corpus can tune them through config.
type Scoring struct {
	DirectWeight    int
	CriticalBonus   int
	HighThreshold   int
	MediumThreshold int
	CriticalScopes  []string
}

// DefaultScoring returns the standard heuristic: 2x direct dependents plus
// the transitive count, +5 when any impact-scope tag touches a critical area.
func DefaultScoring() Scoring {
	return Scoring{
		DirectWeight:    2,
		CriticalBonus:   5,
		HighThreshold:   10,
		MediumThreshold: 5,
		CriticalScopes:  []string{"security/", "electron/"},
	}
}

// Impact computes the blast radius of one record: its direct dependents, the
// full transitive closure of dependents, and a bucketed risk score.
func (g *Graph) Impact(rec models.DocumentRecord, s Scoring) models.ImpactEntry {
	direct := g.Dependents(rec.ID)
	total := g.TransitiveDependents(rec.ID)

	score := s.DirectWeight*len(direct) + len(total)
	for _, scope := range rec.ImpactScope {
		if containsAny(scope, s.CriticalScopes) {
			score += s.CriticalBonus
			break
		}
	}

	level := models.RiskLow
	switch {
	case score >= s.HighThreshold:
		level = models.RiskHigh
	case score >= s.MediumThreshold:
		level = models.RiskMedium
	}

	scope := rec.ImpactScope
	if scope == nil {
		scope = []string{}
	}
	return models.ImpactEntry{
		ADR:              rec.ID,
		DirectDependents: direct,
		TotalAffected:    total,
		ImpactScope:      scope,
		Score:            score,
		RiskLevel:        level,
	}
}

// TransitiveDependents returns every id reachable from id over forward
// edges, excluding id itself, sorted. Iterative traversal; cycles are safe.
func (g *Graph) TransitiveDependents(id string) []string {
	visited := map[string]struct{}{id: {}}
	stack := g.Dependents(id)
	var out []string

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		out = append(out, cur)
		stack = append(stack, g.Dependents(cur)...)
	}

	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
