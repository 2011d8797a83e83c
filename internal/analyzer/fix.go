package analyzer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// Fix is one planned edit: replace the target document's extracted value for
// a config key with the source's value.
type Fix struct {
	TargetID string `json:"target"`
	Path     string `json:"path"`
	Key      string `json:"config_key"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// FixResult reports the outcome of applying one fix.
type FixResult struct {
	Fix     Fix    `json:"fix"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// PlanFixes computes the edits that would resolve VERSION_MISMATCH issues.
// Other issue types have no mechanical fix and are skipped. Planning is a
// dry run; nothing is written.
func (a *Analyzer) PlanFixes(issues []models.Issue) []Fix {
	var fixes []Fix
	for _, issue := range issues {
		if issue.Type != models.IssueVersionMismatch {
			continue
		}
		tgt, ok := a.records[issue.TargetID]
		if !ok {
			continue
		}
		fixes = append(fixes, Fix{
			TargetID: issue.TargetID,
			Path:     tgt.Path,
			Key:      issue.ConfigKey,
			OldValue: issue.TargetValue,
			NewValue: issue.SourceValue,
		})
	}
	return fixes
}

// Apply performs one fix in two phases: the edit is computed and verified in
// memory by re-running the extraction against the patched text, and only a
// passing result is written back (atomically). A verification failure leaves
// the file untouched and returns an error.
func (a *Analyzer) Apply(fix Fix) error {
	data, err := a.store.Read(fix.Path)
	if err != nil {
		return fmt.Errorf("analyzer: fix read %s: %w", fix.Path, err)
	}
	text := string(data)

	start, end, current, ok := a.set.ExtractorSpan(fix.Key, text)
	if !ok {
		return fmt.Errorf("analyzer: fix %s: config key %s no longer present in %s", fix.TargetID, fix.Key, fix.Path)
	}
	if current != fix.OldValue {
		return fmt.Errorf("analyzer: fix %s: value changed since plan (%q, planned %q): %w",
			fix.TargetID, current, fix.OldValue, apperr.ErrConflict)
	}

	// Replace only within the matched span so an identical value elsewhere
	// in the document is never touched.
	span := text[start:end]
	patchedSpan := strings.Replace(span, fix.OldValue, fix.NewValue, 1)
	patched := text[:start] + patchedSpan + text[end:]

	got, found, err := a.set.Extract(fix.Key, patched)
	if err != nil || !found || got != fix.NewValue {
		return fmt.Errorf("analyzer: fix %s: verification failed for %s (extracted %q, want %q)",
			fix.TargetID, fix.Key, got, fix.NewValue)
	}

	if err := a.store.Write(fix.Path, []byte(patched)); err != nil {
		return fmt.Errorf("analyzer: fix write %s: %w", fix.Path, err)
	}
	return nil
}

// ApplyAll applies every planned fix, collecting per-fix outcomes instead of
// stopping at the first failure.
func (a *Analyzer) ApplyAll(fixes []Fix) []FixResult {
	results := make([]FixResult, 0, len(fixes))
	for _, fix := range fixes {
		res := FixResult{Fix: fix, Applied: true}
		if err := a.Apply(fix); err != nil {
			res.Applied = false
			res.Error = err.Error()
			a.logger.Warn("fix not applied",
				slog.String("target", fix.TargetID),
				slog.String("config_key", fix.Key),
				slog.String("error", err.Error()))
		} else {
			a.logger.Info("fix applied",
				slog.String("target", fix.TargetID),
				slog.String("config_key", fix.Key),
				slog.String("old", fix.OldValue),
				slog.String("new", fix.NewValue))
		}
		results = append(results, res)
	}
	return results
}
