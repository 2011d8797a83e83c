// Package analyzer cross-checks configuration values between linked decision
// records and plans corrective edits.
package analyzer

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/rules"
	"github.com/starford/ansuz/internal/storage"
)

// Analyzer applies a linkage rule set to a loaded corpus.
type Analyzer struct {
	store   storage.Provider
	set     *rules.Set
	records map[string]models.DocumentRecord
	logger  *slog.Logger
}

// New creates an Analyzer over the given corpus snapshot.
func New(store storage.Provider, set *rules.Set, records map[string]models.DocumentRecord, logger *slog.Logger) *Analyzer {
	return &Analyzer{store: store, set: set, records: records, logger: logger}
}

// Check runs every linkage rule and returns the detected issues.
//
// A missing source or target record produces a MISSING_*_ADR issue and skips
// the affected pairings. Extraction or read failures are converted into
// VALIDATION_ERROR issues per pairing; no failure aborts the remaining checks.
func (a *Analyzer) Check() []models.Issue {
	var issues []models.Issue

	for _, rule := range a.set.Rules {
		src, ok := a.records[rule.SourceID]
		if !ok {
			issues = append(issues, models.Issue{
				Type:     models.IssueMissingSource,
				SourceID: rule.SourceID,
				Detail:   "rule source record not found in corpus",
			})
			continue
		}

		srcText, err := a.readText(src)
		if err != nil {
			issues = append(issues, models.Issue{
				Type:     models.IssueValidationError,
				SourceID: rule.SourceID,
				Detail:   err.Error(),
			})
			continue
		}

		if rule.SyncPolicy == rules.PolicyConsistencyCheck {
			issues = append(issues, a.checkConsistency(rule, src, srcText)...)
			continue
		}

		for _, targetID := range rule.TargetIDs {
			tgt, ok := a.records[targetID]
			if !ok {
				issues = append(issues, models.Issue{
					Type:     models.IssueMissingTarget,
					SourceID: rule.SourceID,
					TargetID: targetID,
					Detail:   "rule target record not found in corpus",
				})
				continue
			}
			issues = append(issues, a.checkPair(rule, src, srcText, tgt)...)
		}
	}

	return issues
}

// checkPair compares every config key of one source/target pairing.
func (a *Analyzer) checkPair(rule rules.LinkageRule, src models.DocumentRecord, srcText string, tgt models.DocumentRecord) []models.Issue {
	tgtText, err := a.readText(tgt)
	if err != nil {
		return []models.Issue{{
			Type:     models.IssueValidationError,
			SourceID: src.ID,
			TargetID: tgt.ID,
			Detail:   err.Error(),
		}}
	}

	var issues []models.Issue
	for _, key := range rule.ConfigKeys {
		srcVal, srcOK, err := a.extract(key, srcText, src.ID)
		if err != nil {
			issues = append(issues, validationIssue(src.ID, tgt.ID, key, err))
			continue
		}
		tgtVal, tgtOK, err := a.extract(key, tgtText, tgt.ID)
		if err != nil {
			issues = append(issues, validationIssue(src.ID, tgt.ID, key, err))
			continue
		}
		if !srcOK || !tgtOK {
			// The key simply is not discussed in one of the documents;
			// nothing to compare.
			continue
		}

		switch rule.SyncPolicy {
		case rules.PolicyExactMatch:
			if srcVal != tgtVal {
				issues = append(issues, models.Issue{
					Type:        models.IssueVersionMismatch,
					SourceID:    src.ID,
					TargetID:    tgt.ID,
					ConfigKey:   key,
					SourceValue: srcVal,
					TargetValue: tgtVal,
					Expected:    srcVal,
				})
			}

		case rules.PolicyInheritStrict:
			if reason := a.inheritViolation(key, srcVal, tgtVal); reason != "" {
				issues = append(issues, models.Issue{
					Type:        models.IssuePolicyNotInherited,
					SourceID:    src.ID,
					TargetID:    tgt.ID,
					ConfigKey:   key,
					SourceValue: srcVal,
					TargetValue: tgtVal,
					Detail:      reason,
				})
			}

		case rules.PolicyMinThreshold:
			srcNum, err1 := strconv.ParseFloat(srcVal, 64)
			tgtNum, err2 := strconv.ParseFloat(tgtVal, 64)
			if err1 != nil || err2 != nil {
				issues = append(issues, validationIssue(src.ID, tgt.ID, key,
					fmt.Errorf("non-numeric value for min-threshold (%q vs %q)", srcVal, tgtVal)))
				continue
			}
			if tgtNum < srcNum {
				issues = append(issues, models.Issue{
					Type:        models.IssueThresholdTooLow,
					SourceID:    src.ID,
					TargetID:    tgt.ID,
					ConfigKey:   key,
					SourceValue: srcVal,
					TargetValue: tgtVal,
					Expected:    ">= " + srcVal,
				})
			}
		}
	}
	return issues
}

// checkConsistency verifies that the extracted value for every key is
// identical across the source and all targets. Each diverging target emits
// one CONSISTENCY_DRIFT issue per key.
func (a *Analyzer) checkConsistency(rule rules.LinkageRule, src models.DocumentRecord, srcText string) []models.Issue {
	var issues []models.Issue
	for _, key := range rule.ConfigKeys {
		srcVal, srcOK, err := a.extract(key, srcText, src.ID)
		if err != nil {
			issues = append(issues, validationIssue(src.ID, "", key, err))
			continue
		}
		if !srcOK {
			continue
		}
		for _, targetID := range rule.TargetIDs {
			tgt, ok := a.records[targetID]
			if !ok {
				issues = append(issues, models.Issue{
					Type:     models.IssueMissingTarget,
					SourceID: src.ID,
					TargetID: targetID,
					Detail:   "rule target record not found in corpus",
				})
				continue
			}
			tgtText, err := a.readText(tgt)
			if err != nil {
				issues = append(issues, validationIssue(src.ID, tgt.ID, key, err))
				continue
			}
			tgtVal, tgtOK, err := a.extract(key, tgtText, tgt.ID)
			if err != nil {
				issues = append(issues, validationIssue(src.ID, tgt.ID, key, err))
				continue
			}
			if !tgtOK {
				continue
			}
			if tgtVal != srcVal {
				issues = append(issues, models.Issue{
					Type:        models.IssueConsistencyDrift,
					SourceID:    src.ID,
					TargetID:    tgt.ID,
					ConfigKey:   key,
					SourceValue: srcVal,
					TargetValue: tgtVal,
					Expected:    srcVal,
				})
			}
		}
	}
	return issues
}

// inheritViolation implements the inherit-strict predicate. A boolean source
// of "false" forces the target to "false" exactly; other keys fail when the
// target value contains a disallowed substring.
func (a *Analyzer) inheritViolation(key, srcVal, tgtVal string) string {
	if srcVal == "false" || srcVal == "true" {
		if srcVal == "false" && tgtVal != "false" {
			return fmt.Sprintf("source disables %s; target must be \"false\", got %q", key, tgtVal)
		}
		return ""
	}
	if policy, ok := a.set.Inherit[key]; ok {
		for _, bad := range policy.Disallowed {
			if strings.Contains(tgtVal, bad) {
				return fmt.Sprintf("target value contains disallowed %q", bad)
			}
		}
	}
	return ""
}

func (a *Analyzer) extract(key, text, id string) (string, bool, error) {
	val, ok, err := a.set.Extract(key, text)
	if err != nil {
		return "", false, fmt.Errorf("extract %s from %s: %w", key, id, err)
	}
	return val, ok, nil
}

// readText re-reads a record's raw document text. Consistency checks run
// against the file on disk, not the parsed snapshot, so a fix applied
// mid-run is visible to later checks.
func (a *Analyzer) readText(rec models.DocumentRecord) (string, error) {
	data, err := a.store.Read(rec.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rec.Path, err)
	}
	return string(data), nil
}

func validationIssue(sourceID, targetID, key string, err error) models.Issue {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return models.Issue{
		Type:      models.IssueValidationError,
		SourceID:  sourceID,
		TargetID:  targetID,
		ConfigKey: key,
		Detail:    detail,
	}
}
