// Package report assembles analysis results into the JSON report and the
// Graphviz DOT export.
package report

import (
	"time"

	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/rules"
)

// Summary holds the headline counts of one analysis run.
type Summary struct {
	TotalADRs    int `json:"total_adrs"`
	AcceptedADRs int `json:"accepted_adrs"`
	Cycles       int `json:"cycles"`
	ConfigIssues int `json:"config_issues"`
	HighRiskADRs int `json:"high_risk_adrs"`
}

// Node is one record in the dependency graph snapshot.
type Node struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// GraphSnapshot is the serialised dependency graph.
type GraphSnapshot struct {
	Nodes []Node        `json:"nodes"`
	Edges []models.Edge `json:"edges"`
}

// Report is the full analysis output.
type Report struct {
	Timestamp       time.Time            `json:"timestamp"`
	Summary         Summary              `json:"summary"`
	DependencyGraph GraphSnapshot        `json:"dependency_graph"`
	Cycles          [][]string           `json:"cycles"`
	ConfigIssues    []models.Issue       `json:"config_issues"`
	ImpactAnalysis  []models.ImpactEntry `json:"impact_analysis"`
	LinkageRules    []rules.LinkageRule  `json:"linkage_rules"`
}

// Build assembles a Report from the outputs of the analysis pipeline.
func Build(records []models.DocumentRecord, g *graph.Graph, cycles [][]string, issues []models.Issue, impact []models.ImpactEntry, set *rules.Set) *Report {
	nodes := make([]Node, 0, len(records))
	accepted := 0
	for _, r := range records {
		nodes = append(nodes, Node{ID: r.ID, Title: r.Title, Status: r.Status})
		if r.Status == models.StatusAccepted {
			accepted++
		}
	}

	highRisk := 0
	for _, e := range impact {
		if e.RiskLevel == models.RiskHigh {
			highRisk++
		}
	}

	if cycles == nil {
		cycles = [][]string{}
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	if impact == nil {
		impact = []models.ImpactEntry{}
	}

	return &Report{
		Timestamp: time.Now().UTC(),
		Summary: Summary{
			TotalADRs:    len(records),
			AcceptedADRs: accepted,
			Cycles:       len(cycles),
			ConfigIssues: len(issues),
			HighRiskADRs: highRisk,
		},
		DependencyGraph: GraphSnapshot{Nodes: nodes, Edges: g.Edges()},
		Cycles:          cycles,
		ConfigIssues:    issues,
		ImpactAnalysis:  impact,
		LinkageRules:    set.Rules,
	}
}
