// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the ADR analysis tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/adrservice"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	svc *adrservice.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *adrservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_adrs",
		mcp.WithDescription("Full-text search through decision record titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchADRs)

	s.mcp.AddTool(mcp.NewTool("read_adr",
		mcp.WithDescription("Read the full content of a decision record by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id (e.g. ADR-0001)")),
	), s.readADR)

	s.mcp.AddTool(mcp.NewTool("list_adrs",
		mcp.WithDescription("List decision records, optionally filtered by status."),
		mcp.WithString("status", mcp.Description("Optional status filter (Proposed, Accepted, Deprecated, Superseded)")),
	), s.listADRs)

	s.mcp.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Return the dependency graph of the latest analysis: nodes and edges."),
	), s.getGraph)

	s.mcp.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Return the latest full analysis report: dependency graph, cycles, consistency issues, and impact scores."),
	), s.getReport)

	s.mcp.AddTool(mcp.NewTool("get_impact",
		mcp.WithDescription("Blast-radius analysis for one record: direct dependents, transitive closure, and risk level."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id to analyse")),
	), s.getImpact)

	s.mcp.AddTool(mcp.NewTool("list_cycles",
		mcp.WithDescription("List circular dependency chains detected in the corpus."),
	), s.listCycles)

	s.mcp.AddTool(mcp.NewTool("get_adr_contract",
		mcp.WithDescription("Returns the canonical decision record format. "+
			"Call this before writing records so front-matter keys are correct."),
	), s.getContract)

	// Resource: record format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://adr-format", "ADR Format Contract",
			mcp.WithResourceDescription("Canonical Markdown decision record format that all records must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchADRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readADR(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetADR(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(detail.Content), nil
}

func (s *Server) listADRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	items, _, err := s.svc.ListADRs(ctx, 500, 0, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getGraph(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, edges, err := s.svc.PersistedGraph(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodes := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, map[string]string{
			"id":     row.ID,
			"title":  row.Title,
			"status": row.Status,
		})
	}
	out, _ := json.MarshalIndent(map[string]any{"nodes": nodes, "edges": edges}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getReport(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Report(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rep, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getImpact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.Impact(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entry, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCycles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Report(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rep.Cycles, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ADRFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://adr-format",
			MIMEType: "text/markdown",
			Text:     ADRFormatContract,
		},
	}, nil
}
