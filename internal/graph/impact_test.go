package graph

import (
	"reflect"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestImpactScoring(t *testing.T) {
	// ADR-0001 has three direct dependents and five transitively affected
	// records, and touches a critical scope.
	records := []models.DocumentRecord{
		{ID: "ADR-0001", ImpactScope: []string{"security/preload.ts"}},
		rec("ADR-0002", "ADR-0001"),
		rec("ADR-0003", "ADR-0001"),
		rec("ADR-0004", "ADR-0001"),
		rec("ADR-0005", "ADR-0002"),
		rec("ADR-0006", "ADR-0003"),
	}
	g := Build(records)

	entry := g.Impact(records[0], DefaultScoring())
	if len(entry.DirectDependents) != 3 {
		t.Errorf("DirectDependents = %v", entry.DirectDependents)
	}
	if len(entry.TotalAffected) != 5 {
		t.Errorf("TotalAffected = %v", entry.TotalAffected)
	}
	// 2*3 direct + 5 total + 5 critical bonus.
	if entry.Score != 16 {
		t.Errorf("Score = %d, want 16", entry.Score)
	}
	if entry.RiskLevel != models.RiskHigh {
		t.Errorf("RiskLevel = %q, want HIGH", entry.RiskLevel)
	}
}

func TestImpactLeafIsLow(t *testing.T) {
	records := []models.DocumentRecord{
		rec("ADR-0001"),
		rec("ADR-0002", "ADR-0001"),
	}
	g := Build(records)

	entry := g.Impact(records[1], DefaultScoring())
	if entry.Score != 0 {
		t.Errorf("Score = %d, want 0", entry.Score)
	}
	if entry.RiskLevel != models.RiskLow {
		t.Errorf("RiskLevel = %q, want LOW", entry.RiskLevel)
	}
	if entry.TotalAffected == nil || entry.DirectDependents == nil {
		t.Error("slices must be non-nil for stable JSON output")
	}
}

func TestImpactMediumThreshold(t *testing.T) {
	// Two direct dependents, no further reach, no critical scope: 2*2+2 = 6.
	records := []models.DocumentRecord{
		rec("ADR-0001"),
		rec("ADR-0002", "ADR-0001"),
		rec("ADR-0003", "ADR-0001"),
	}
	g := Build(records)

	entry := g.Impact(records[0], DefaultScoring())
	if entry.Score != 6 {
		t.Errorf("Score = %d, want 6", entry.Score)
	}
	if entry.RiskLevel != models.RiskMedium {
		t.Errorf("RiskLevel = %q, want MEDIUM", entry.RiskLevel)
	}
}

func TestImpactMonotonicInDependents(t *testing.T) {
	base := []models.DocumentRecord{rec("ADR-0001")}
	prev := -1
	for n := 1; n <= 5; n++ {
		records := append([]models.DocumentRecord{}, base...)
		for i := 0; i < n; i++ {
			records = append(records, rec(depID(i), "ADR-0001"))
		}
		g := Build(records)
		score := g.Impact(records[0], DefaultScoring()).Score
		if score <= prev {
			t.Fatalf("score not monotonic: %d after %d with %d dependents", score, prev, n)
		}
		prev = score
	}
}

func depID(i int) string {
	return []string{"ADR-0002", "ADR-0003", "ADR-0004", "ADR-0005", "ADR-0006"}[i]
}

func TestTransitiveDependentsCycleSafe(t *testing.T) {
	g := Build([]models.DocumentRecord{
		rec("ADR-0001", "ADR-0002"),
		rec("ADR-0002", "ADR-0001"),
	})
	got := g.TransitiveDependents("ADR-0001")
	if !reflect.DeepEqual(got, []string{"ADR-0002"}) {
		t.Errorf("TransitiveDependents = %v", got)
	}
}
