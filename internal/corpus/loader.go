// Package corpus loads decision records from a storage provider.
package corpus

import (
	"log/slog"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// Load walks the corpus and parses every Markdown file into a DocumentRecord.
//
// Per-file parse failures (missing front-matter, invalid YAML, no derivable
// id) are logged as warnings and the file is skipped; the pass itself only
// fails when the corpus cannot be listed at all. Duplicate ids resolve
// last-wins, with a warning naming both paths.
func Load(store storage.Provider, logger *slog.Logger) ([]models.DocumentRecord, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int)
	var records []models.DocumentRecord

	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("corpus: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		res, err := parser.Parse(data, m.Path)
		if err != nil {
			logger.Warn("corpus: skipping unparsable document", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}

		rec := models.DocumentRecord{
			ID:          res.ID,
			Title:       res.Title,
			Status:      res.Status,
			DependsOn:   res.DependsOn,
			DependedBy:  res.DependedBy,
			ImpactScope: res.ImpactScope,
			TechTags:    res.TechTags,
			Path:        m.Path,
			Body:        res.Body,
			Checksum:    m.Checksum,
			UpdatedAt:   m.UpdatedAt,
		}

		if prev, dup := byID[rec.ID]; dup {
			logger.Warn("corpus: duplicate id, last wins",
				slog.String("id", rec.ID),
				slog.String("kept", rec.Path),
				slog.String("shadowed", records[prev].Path))
			records[prev] = rec
			continue
		}
		byID[rec.ID] = len(records)
		records = append(records, rec)
	}

	return records, nil
}

// Index returns a lookup map from record id to record. Input order is
// preserved in the slice; the map is a convenience for rule checks.
func Index(records []models.DocumentRecord) map[string]models.DocumentRecord {
	out := make(map[string]models.DocumentRecord, len(records))
	for _, r := range records {
		out[r.ID] = r
	}
	return out
}
