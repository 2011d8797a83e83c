package adrservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
)

// ADRDetail is the full representation of one decision record.
type ADRDetail struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Content      string    `json:"content"`
	Checksum     string    `json:"checksum"`
	ImpactScope  []string  `json:"impact_scope"`
	TechTags     []string  `json:"tech_tags"`
	Dependencies []string  `json:"dependencies"`
	Dependents   []string  `json:"dependents"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ADRListItem is a lightweight item in a list response.
type ADRListItem struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetADR returns one record with its content and graph neighbourhood.
func (s *Service) GetADR(_ context.Context, id string) (*ADRDetail, error) {
	row, err := s.db.GetRecord(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}

	data, err := s.store.Read(row.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	deps, err := s.db.Dependencies(id)
	if err != nil {
		return nil, err
	}
	dependents, err := s.db.Dependents(id)
	if err != nil {
		return nil, err
	}

	return &ADRDetail{
		ID:           row.ID,
		Path:         row.Path,
		Title:        row.Title,
		Status:       row.Status,
		Content:      string(data),
		Checksum:     row.Checksum,
		ImpactScope:  nonNilSlice(row.Scopes),
		TechTags:     nonNilSlice(row.Tags),
		Dependencies: nonNilSlice(deps),
		Dependents:   nonNilSlice(dependents),
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// ListADRs returns paginated records with an optional status filter.
func (s *Service) ListADRs(_ context.Context, limit, offset int, status string) ([]ADRListItem, int, error) {
	rows, total, err := s.db.ListRecords(limit, offset, status)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ADRListItem, len(rows))
	for i, r := range rows {
		items[i] = ADRListItem{
			ID:        r.ID,
			Path:      r.Path,
			Title:     r.Title,
			Status:    r.Status,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// PersistedGraph returns the graph snapshot as stored in the index.
func (s *Service) PersistedGraph(_ context.Context) ([]index.RecordRow, []models.Edge, error) {
	return s.db.Graph()
}

// PersistedIssues returns the issues from the latest persisted analysis.
func (s *Service) PersistedIssues(_ context.Context) ([]models.Issue, error) {
	return s.db.Issues()
}

// Impact returns the impact entry for one record from the latest analysis.
func (s *Service) Impact(_ context.Context, id string) (*models.ImpactEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, apperr.ErrNoAnalysis
	}
	rec, ok := s.snapshot.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	entry := s.snapshot.graph.Impact(rec, s.scoring)
	return &entry, nil
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
