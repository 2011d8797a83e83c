package corpus

import (
	"testing"

	"github.com/starford/ansuz/internal/testutil"
)

func TestLoadSkipsUnparsable(t *testing.T) {
	dir, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, dir, "ADR-0001.md", "---\nid: ADR-0001\n---\n# One\n")
	testutil.WriteDoc(t, dir, "README.md", "# No frontmatter here\n")
	testutil.WriteDoc(t, dir, "broken.md", "---\nid: [unclosed\n---\nbody\n")

	records, err := Load(store, testutil.SilentLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 || records[0].ID != "ADR-0001" {
		t.Errorf("records = %v", records)
	}
}

func TestLoadDuplicateIDLastWins(t *testing.T) {
	dir, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, dir, "a.md", "---\nid: ADR-0001\ntitle: First\n---\nbody\n")
	testutil.WriteDoc(t, dir, "b.md", "---\nid: ADR-0001\ntitle: Second\n---\nbody\n")

	records, err := Load(store, testutil.SilentLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %v, want one", records)
	}
	if records[0].Title != "Second" || records[0].Path != "b.md" {
		t.Errorf("kept record = %+v, want the later file", records[0])
	}
}

func TestLoadPopulatesMetadata(t *testing.T) {
	dir, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, dir, "nested/ADR-0002.md", "---\nid: ADR-0002\nstatus: Proposed\ndepends-on:\n  - ADR-0001\n---\n# Two\n")

	records, err := Load(store, testutil.SilentLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %v", records)
	}
	r := records[0]
	if r.Path != "nested/ADR-0002.md" {
		t.Errorf("Path = %q", r.Path)
	}
	if r.Checksum == "" {
		t.Error("checksum not set")
	}
	if r.UpdatedAt.IsZero() {
		t.Error("updated_at not set")
	}
	if len(r.DependsOn) != 1 || r.DependsOn[0] != "ADR-0001" {
		t.Errorf("DependsOn = %v", r.DependsOn)
	}
}

func TestIndex(t *testing.T) {
	dir, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, dir, "ADR-0001.md", "---\nid: ADR-0001\n---\nbody\n")
	testutil.WriteDoc(t, dir, "ADR-0002.md", "---\nid: ADR-0002\n---\nbody\n")

	records, err := Load(store, testutil.SilentLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	byID := Index(records)
	if len(byID) != 2 {
		t.Fatalf("byID = %v", byID)
	}
	if byID["ADR-0002"].ID != "ADR-0002" {
		t.Errorf("lookup failed: %+v", byID["ADR-0002"])
	}
}
