package analyzer

import (
	"testing"

	"github.com/starford/ansuz/internal/corpus"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/rules"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/testutil"
)

func doc(id, body string) string {
	return "---\nid: " + id + "\nstatus: Accepted\n---\n# " + id + "\n\n" + body + "\n"
}

// newAnalyzer writes the given documents into a temp corpus and returns an
// Analyzer over them with the given rule set.
func newAnalyzer(t *testing.T, set *rules.Set, docs map[string]string) (*Analyzer, storage.Provider) {
	t.Helper()
	dir, store := testutil.TestCorpus(t)
	for name, content := range docs {
		testutil.WriteDoc(t, dir, name, content)
	}
	records, err := corpus.Load(store, testutil.SilentLogger())
	if err != nil {
		t.Fatalf("corpus.Load: %v", err)
	}
	return New(store, set, corpus.Index(records), testutil.SilentLogger()), store
}

func versionSet(t *testing.T, policy string) *rules.Set {
	t.Helper()
	s := &rules.Set{
		Rules: []rules.LinkageRule{{
			SourceID:   "ADR-0001",
			TargetIDs:  []string{"ADR-0002"},
			ConfigKeys: []string{"react-version"},
			SyncPolicy: policy,
		}},
		Extractors: map[string]string{
			"react-version": `React[^0-9]*v?([0-9][0-9.]*)`,
		},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("set.Validate: %v", err)
	}
	return s
}

func TestCheckExactMatchClean(t *testing.T) {
	a, _ := newAnalyzer(t, versionSet(t, rules.PolicyExactMatch), map[string]string{
		"ADR-0001.md": doc("ADR-0001", "We standardise on React v18.2.0."),
		"ADR-0002.md": doc("ADR-0002", "The build targets React v18.2.0."),
	})
	if issues := a.Check(); len(issues) != 0 {
		t.Errorf("issues = %v, want none", issues)
	}
}

func TestCheckExactMatchMismatch(t *testing.T) {
	a, _ := newAnalyzer(t, versionSet(t, rules.PolicyExactMatch), map[string]string{
		"ADR-0001.md": doc("ADR-0001", "We standardise on React v18.2.0."),
		"ADR-0002.md": doc("ADR-0002", "The build targets React v17.0.2."),
	})
	issues := a.Check()
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", issues)
	}
	issue := issues[0]
	if issue.Type != models.IssueVersionMismatch {
		t.Errorf("Type = %q", issue.Type)
	}
	if issue.SourceValue != "18.2.0" || issue.TargetValue != "17.0.2" {
		t.Errorf("values = %q vs %q", issue.SourceValue, issue.TargetValue)
	}
	if issue.Expected != "18.2.0" {
		t.Errorf("Expected = %q", issue.Expected)
	}
}

func TestCheckKeyAbsentIsSilent(t *testing.T) {
	a, _ := newAnalyzer(t, versionSet(t, rules.PolicyExactMatch), map[string]string{
		"ADR-0001.md": doc("ADR-0001", "We standardise on React v18.2.0."),
		"ADR-0002.md": doc("ADR-0002", "This record never mentions the frontend."),
	})
	if issues := a.Check(); len(issues) != 0 {
		t.Errorf("issues = %v, want none when key is absent in target", issues)
	}
}

func TestCheckMissingTarget(t *testing.T) {
	a, _ := newAnalyzer(t, versionSet(t, rules.PolicyExactMatch), map[string]string{
		"ADR-0001.md": doc("ADR-0001", "We standardise on React v18.2.0."),
	})
	issues := a.Check()
	if len(issues) != 1 || issues[0].Type != models.IssueMissingTarget {
		t.Fatalf("issues = %v, want one MISSING_TARGET_ADR", issues)
	}
	if issues[0].TargetID != "ADR-0002" {
		t.Errorf("TargetID = %q", issues[0].TargetID)
	}
}

func TestCheckMissingSource(t *testing.T) {
	a, _ := newAnalyzer(t, versionSet(t, rules.PolicyExactMatch), map[string]string{
		"ADR-0002.md": doc("ADR-0002", "The build targets React v18.2.0."),
	})
	issues := a.Check()
	if len(issues) != 1 || issues[0].Type != models.IssueMissingSource {
		t.Fatalf("issues = %v, want one MISSING_SOURCE_ADR", issues)
	}
}

func TestCheckMinThreshold(t *testing.T) {
	set := &rules.Set{
		Rules: []rules.LinkageRule{{
			SourceID:   "ADR-0001",
			TargetIDs:  []string{"ADR-0002"},
			ConfigKeys: []string{"test-coverage"},
			SyncPolicy: rules.PolicyMinThreshold,
		}},
		Extractors: map[string]string{
			"test-coverage": `coverage[^0-9]*([0-9]+(?:\.[0-9]+)?)`,
		},
	}
	if err := set.Validate(); err != nil {
		t.Fatal(err)
	}

	t.Run("below threshold", func(t *testing.T) {
		a, _ := newAnalyzer(t, set, map[string]string{
			"ADR-0001.md": doc("ADR-0001", "Minimum coverage of 80% is required."),
			"ADR-0002.md": doc("ADR-0002", "Current coverage is 75%."),
		})
		issues := a.Check()
		if len(issues) != 1 || issues[0].Type != models.IssueThresholdTooLow {
			t.Fatalf("issues = %v, want one THRESHOLD_TOO_LOW", issues)
		}
		if issues[0].Expected != ">= 80" {
			t.Errorf("Expected = %q", issues[0].Expected)
		}
	})

	t.Run("above threshold", func(t *testing.T) {
		a, _ := newAnalyzer(t, set, map[string]string{
			"ADR-0001.md": doc("ADR-0001", "Minimum coverage of 80% is required."),
			"ADR-0002.md": doc("ADR-0002", "Current coverage is 92.5%."),
		})
		if issues := a.Check(); len(issues) != 0 {
			t.Errorf("issues = %v, want none", issues)
		}
	})
}

func TestCheckInheritStrictBoolean(t *testing.T) {
	set := &rules.Set{
		Rules: []rules.LinkageRule{{
			SourceID:   "ADR-0001",
			TargetIDs:  []string{"ADR-0002"},
			ConfigKeys: []string{"node-integration"},
			SyncPolicy: rules.PolicyInheritStrict,
		}},
		Extractors: map[string]string{
			"node-integration": `nodeIntegration[^a-z]*(true|false)`,
		},
	}
	if err := set.Validate(); err != nil {
		t.Fatal(err)
	}

	a, _ := newAnalyzer(t, set, map[string]string{
		"ADR-0001.md": doc("ADR-0001", "Security baseline: nodeIntegration: false."),
		"ADR-0002.md": doc("ADR-0002", "The window enables nodeIntegration: true."),
	})
	issues := a.Check()
	if len(issues) != 1 || issues[0].Type != models.IssuePolicyNotInherited {
		t.Fatalf("issues = %v, want one POLICY_NOT_INHERITED", issues)
	}
}

func TestCheckInheritStrictDisallowed(t *testing.T) {
	set := &rules.Set{
		Rules: []rules.LinkageRule{{
			SourceID:   "ADR-0001",
			TargetIDs:  []string{"ADR-0002"},
			ConfigKeys: []string{"csp-policy"},
			SyncPolicy: rules.PolicyInheritStrict,
		}},
		Extractors: map[string]string{
			"csp-policy": "default-src[^\n]*",
		},
		Inherit: map[string]rules.InheritPolicy{
			"csp-policy": {Disallowed: []string{"unsafe-eval"}},
		},
	}
	if err := set.Validate(); err != nil {
		t.Fatal(err)
	}

	a, _ := newAnalyzer(t, set, map[string]string{
		"ADR-0001.md": doc("ADR-0001", "CSP: default-src 'self'."),
		"ADR-0002.md": doc("ADR-0002", "CSP: default-src 'self' 'unsafe-eval'."),
	})
	issues := a.Check()
	if len(issues) != 1 || issues[0].Type != models.IssuePolicyNotInherited {
		t.Fatalf("issues = %v, want one POLICY_NOT_INHERITED", issues)
	}
}

func TestCheckConsistencyDrift(t *testing.T) {
	set := &rules.Set{
		Rules: []rules.LinkageRule{{
			SourceID:   "ADR-0001",
			TargetIDs:  []string{"ADR-0002", "ADR-0003"},
			ConfigKeys: []string{"electron-version"},
			SyncPolicy: rules.PolicyConsistencyCheck,
		}},
		Extractors: map[string]string{
			"electron-version": `Electron[^0-9]*v?([0-9][0-9.]*)`,
		},
	}
	if err := set.Validate(); err != nil {
		t.Fatal(err)
	}

	a, _ := newAnalyzer(t, set, map[string]string{
		"ADR-0001.md": doc("ADR-0001", "Pinned to Electron v28.1.0."),
		"ADR-0002.md": doc("ADR-0002", "Runs on Electron v28.1.0 as well."),
		"ADR-0003.md": doc("ADR-0003", "Still references Electron v27.0.0."),
	})
	issues := a.Check()
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", issues)
	}
	issue := issues[0]
	if issue.Type != models.IssueConsistencyDrift {
		t.Errorf("Type = %q", issue.Type)
	}
	if issue.TargetID != "ADR-0003" || issue.TargetValue != "27.0.0" {
		t.Errorf("issue = %+v", issue)
	}
}

func TestCheckValidationErrorOnUnreadableFile(t *testing.T) {
	a, store := newAnalyzer(t, versionSet(t, rules.PolicyExactMatch), map[string]string{
		"ADR-0001.md": doc("ADR-0001", "We standardise on React v18.2.0."),
		"ADR-0002.md": doc("ADR-0002", "The build targets React v18.2.0."),
	})
	// Remove the target after loading so the re-read during Check fails.
	if err := store.Delete("ADR-0002.md"); err != nil {
		t.Fatal(err)
	}
	issues := a.Check()
	if len(issues) != 1 || issues[0].Type != models.IssueValidationError {
		t.Fatalf("issues = %v, want one VALIDATION_ERROR", issues)
	}
}
