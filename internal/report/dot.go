package report

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/models"
)

// statusColors maps record statuses to Graphviz fill colors.
var statusColors = map[string]string{
	models.StatusProposed:   "lightblue",
	models.StatusAccepted:   "lightgreen",
	models.StatusDeprecated: "lightgray",
	models.StatusSuperseded: "lightsalmon",
}

// DOT renders the dependency graph as Graphviz DOT text. Nodes are
// color-coded by status; one edge per dependency relationship.
func DOT(records []models.DocumentRecord, g *graph.Graph) string {
	var sb strings.Builder

	sb.WriteString("digraph adr_dependencies {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box, style=filled];\n\n")

	for _, r := range records {
		color, ok := statusColors[r.Status]
		if !ok {
			color = "white"
		}
		label := r.ID
		if r.Title != "" {
			label = fmt.Sprintf("%s\\n%s", r.ID, escapeDOT(r.Title))
		}
		sb.WriteString(fmt.Sprintf("    %q [label=\"%s\", fillcolor=%s];\n", r.ID, label, color))
	}

	sb.WriteString("\n")
	for _, e := range g.Edges() {
		sb.WriteString(fmt.Sprintf("    %q -> %q;\n", e.Source, e.Target))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
