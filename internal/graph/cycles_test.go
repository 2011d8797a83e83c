package graph

import (
	"reflect"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestDetectCyclesNone(t *testing.T) {
	g := Build([]models.DocumentRecord{
		rec("ADR-0001"),
		rec("ADR-0002", "ADR-0001"),
		rec("ADR-0003", "ADR-0001", "ADR-0002"),
	})
	if cycles := g.DetectCycles(); len(cycles) != 0 {
		t.Errorf("cycles = %v, want none", cycles)
	}
}

func TestDetectCyclesTwoNode(t *testing.T) {
	g := Build([]models.DocumentRecord{
		rec("ADR-0001", "ADR-0002"),
		rec("ADR-0002", "ADR-0001"),
	})
	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want exactly one", cycles)
	}
	if !reflect.DeepEqual(cycles[0], []string{"ADR-0001", "ADR-0002"}) {
		t.Errorf("cycle = %v", cycles[0])
	}
}

func TestDetectCyclesSelfLoop(t *testing.T) {
	g := Build([]models.DocumentRecord{
		rec("ADR-0001", "ADR-0001"),
	})
	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want one", cycles)
	}
	if !reflect.DeepEqual(cycles[0], []string{"ADR-0001"}) {
		t.Errorf("cycle = %v", cycles[0])
	}
}

func TestDetectCyclesLongChain(t *testing.T) {
	g := Build([]models.DocumentRecord{
		rec("ADR-0001", "ADR-0003"),
		rec("ADR-0002", "ADR-0001"),
		rec("ADR-0003", "ADR-0002"),
		rec("ADR-0004", "ADR-0001"), // dangles off the cycle, not part of it
	})
	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want one", cycles)
	}
	// Canonical rotation starts at the smallest id.
	if cycles[0][0] != "ADR-0001" {
		t.Errorf("cycle = %v, want rotation starting at ADR-0001", cycles[0])
	}
	if len(cycles[0]) != 3 {
		t.Errorf("cycle length = %d, want 3", len(cycles[0]))
	}
}

func TestDetectCyclesDisjoint(t *testing.T) {
	g := Build([]models.DocumentRecord{
		rec("ADR-0001", "ADR-0002"),
		rec("ADR-0002", "ADR-0001"),
		rec("ADR-0005", "ADR-0006"),
		rec("ADR-0006", "ADR-0005"),
		rec("ADR-0009"),
	})
	cycles := g.DetectCycles()
	if len(cycles) != 2 {
		t.Fatalf("cycles = %v, want two", cycles)
	}
}

func TestCanonicalise(t *testing.T) {
	got := canonicalise([]string{"ADR-0003", "ADR-0001", "ADR-0002"})
	want := []string{"ADR-0001", "ADR-0002", "ADR-0003"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("canonicalise = %v, want %v", got, want)
	}
}
