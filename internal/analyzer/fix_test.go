package analyzer

import (
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/rules"
)

func mismatchAnalyzer(t *testing.T) (*Analyzer, []models.Issue) {
	t.Helper()
	a, _ := newAnalyzer(t, versionSet(t, rules.PolicyExactMatch), map[string]string{
		"ADR-0001.md": doc("ADR-0001", "We standardise on React v18.2.0."),
		"ADR-0002.md": doc("ADR-0002", "The build targets React v17.0.2."),
	})
	issues := a.Check()
	if len(issues) != 1 || issues[0].Type != models.IssueVersionMismatch {
		t.Fatalf("setup: issues = %v", issues)
	}
	return a, issues
}

func TestPlanFixes(t *testing.T) {
	a, issues := mismatchAnalyzer(t)
	fixes := a.PlanFixes(issues)
	if len(fixes) != 1 {
		t.Fatalf("fixes = %v, want one", fixes)
	}
	fix := fixes[0]
	if fix.TargetID != "ADR-0002" || fix.Key != "react-version" {
		t.Errorf("fix = %+v", fix)
	}
	if fix.OldValue != "17.0.2" || fix.NewValue != "18.2.0" {
		t.Errorf("fix values = %q -> %q", fix.OldValue, fix.NewValue)
	}
}

func TestPlanFixesSkipsOtherIssueTypes(t *testing.T) {
	a, _ := mismatchAnalyzer(t)
	fixes := a.PlanFixes([]models.Issue{
		{Type: models.IssueThresholdTooLow, TargetID: "ADR-0002"},
		{Type: models.IssueMissingTarget, TargetID: "ADR-0009"},
	})
	if len(fixes) != 0 {
		t.Errorf("fixes = %v, want none", fixes)
	}
}

func TestApplyClearsMismatch(t *testing.T) {
	a, issues := mismatchAnalyzer(t)
	fixes := a.PlanFixes(issues)

	if err := a.Apply(fixes[0]); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	data, err := a.store.Read("ADR-0002.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "React v18.2.0") {
		t.Errorf("patched content = %q", data)
	}

	// The consistency check re-reads from disk, so re-running it now must
	// come back clean.
	if issues := a.Check(); len(issues) != 0 {
		t.Errorf("issues after fix = %v, want none", issues)
	}
}

func TestApplyStaleValue(t *testing.T) {
	a, issues := mismatchAnalyzer(t)
	fixes := a.PlanFixes(issues)
	fix := fixes[0]
	fix.OldValue = "16.0.0" // no longer what the document says

	before, _ := a.store.Read(fix.Path)
	if err := a.Apply(fix); err == nil {
		t.Fatal("expected error for stale planned value")
	}
	after, _ := a.store.Read(fix.Path)
	if string(before) != string(after) {
		t.Error("file modified despite failed apply")
	}
}

func TestApplyVerificationFailure(t *testing.T) {
	a, issues := mismatchAnalyzer(t)
	fixes := a.PlanFixes(issues)
	fix := fixes[0]
	fix.NewValue = "not-a-version" // extractor cannot read this back

	before, _ := a.store.Read(fix.Path)
	if err := a.Apply(fix); err == nil {
		t.Fatal("expected verification failure")
	}
	after, _ := a.store.Read(fix.Path)
	if string(before) != string(after) {
		t.Error("file modified despite failed verification")
	}
}

func TestApplyAllCollectsResults(t *testing.T) {
	a, issues := mismatchAnalyzer(t)
	fixes := a.PlanFixes(issues)
	bad := fixes[0]
	bad.OldValue = "0.0.0"

	results := a.ApplyAll(append(fixes, bad))
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}
	if !results[0].Applied {
		t.Errorf("first fix not applied: %s", results[0].Error)
	}
	if results[1].Applied {
		t.Error("stale fix reported as applied")
	}
	if results[1].Error == "" {
		t.Error("failed fix missing error detail")
	}
}
