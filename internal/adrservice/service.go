// Package adrservice orchestrates the analysis pipeline: load the corpus,
// build the dependency graph, detect cycles, run consistency checks, score
// impact, and persist the snapshot for the API, MCP, and CLI surfaces.
package adrservice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/ansuz/internal/analyzer"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/corpus"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/report"
	"github.com/starford/ansuz/internal/rules"
	"github.com/starford/ansuz/internal/storage"
)

// Service coordinates storage, rules, and index operations.
type Service struct {
	store   storage.Provider
	db      *index.DB
	set     *rules.Set
	scoring graph.Scoring
	logger  *slog.Logger

	mu       sync.RWMutex
	snapshot *snapshot
}

// snapshot is the in-memory result of the latest Refresh.
type snapshot struct {
	records []models.DocumentRecord
	byID    map[string]models.DocumentRecord
	graph   *graph.Graph
	rep     *report.Report
}

// New creates the analysis service.
func New(store storage.Provider, db *index.DB, set *rules.Set, scoring graph.Scoring, logger *slog.Logger) *Service {
	return &Service{store: store, db: db, set: set, scoring: scoring, logger: logger}
}

// Refresh runs the full analysis pipeline over the corpus and persists the
// resulting snapshot. Recoverable per-document and per-rule problems surface
// as report issues; Refresh itself fails only when the corpus cannot be
// listed or the snapshot cannot be persisted.
func (s *Service) Refresh(_ context.Context) (*report.Report, error) {
	records, err := corpus.Load(s.store, s.logger)
	if err != nil {
		return nil, err
	}
	byID := corpus.Index(records)

	g := graph.Build(records)
	cycles := g.DetectCycles()

	an := analyzer.New(s.store, s.set, byID, s.logger)
	issues := append(append([]models.Issue{}, g.Dangling...), an.Check()...)

	impact := make([]models.ImpactEntry, 0, len(records))
	for _, r := range records {
		impact = append(impact, g.Impact(r, s.scoring))
	}

	rep := report.Build(records, g, cycles, issues, impact, s.set)

	if err := s.db.ReplaceSnapshot(records, g.Edges(), issues); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = &snapshot{records: records, byID: byID, graph: g, rep: rep}
	s.mu.Unlock()

	s.logger.Info("analysis complete",
		slog.Int("records", len(records)),
		slog.Int("cycles", len(cycles)),
		slog.Int("issues", len(issues)))
	return rep, nil
}

// Report returns the latest analysis report.
func (s *Service) Report(_ context.Context) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, apperr.ErrNoAnalysis
	}
	return s.snapshot.rep, nil
}

// DOT renders the latest dependency graph as Graphviz DOT text.
func (s *Service) DOT(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return "", apperr.ErrNoAnalysis
	}
	return report.DOT(s.snapshot.records, s.snapshot.graph), nil
}

// PlanFixes computes the dry-run edits for the latest analysis.
func (s *Service) PlanFixes(_ context.Context) ([]analyzer.Fix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, apperr.ErrNoAnalysis
	}
	an := analyzer.New(s.store, s.set, s.snapshot.byID, s.logger)
	return an.PlanFixes(s.snapshot.rep.ConfigIssues), nil
}

// ApplyFixes applies the given fixes and re-runs the analysis so the
// persisted snapshot reflects the corrected corpus.
func (s *Service) ApplyFixes(ctx context.Context, fixes []analyzer.Fix) ([]analyzer.FixResult, error) {
	s.mu.RLock()
	if s.snapshot == nil {
		s.mu.RUnlock()
		return nil, apperr.ErrNoAnalysis
	}
	an := analyzer.New(s.store, s.set, s.snapshot.byID, s.logger)
	s.mu.RUnlock()

	results := an.ApplyAll(fixes)
	if _, err := s.Refresh(ctx); err != nil {
		return results, err
	}
	return results, nil
}
