package placement

import (
	"testing"

	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

func node(id string, status int32, limitCPU, usageCPU, limitMem, usageMem uint64) Candidate {
	return Candidate{
		ID:     id,
		Status: status,
		Resource: &schedpb.Resource{
			Limit: &schedpb.ResourceSummary{Cpu: limitCPU, Memory: limitMem, Disk: 100 << 30},
			Usage: &schedpb.ResourceSummary{Cpu: usageCPU, Memory: usageMem, Disk: 0},
		},
	}
}

func desired(cpu, mem uint64) *schedpb.Resource {
	return &schedpb.Resource{Limit: &schedpb.ResourceSummary{Cpu: cpu, Memory: mem, Disk: 0}}
}

func TestPlaceChoosesLowestCPUUsage(t *testing.T) {
	nodes := []Candidate{
		node("b", Running, 4000, 1000, 8<<30, 1<<30),
		node("a", Running, 4000, 500, 8<<30, 1<<30),
	}
	got, err := Place(desired(100, 1<<20), nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a" {
		t.Fatalf("got %q, want a (lowest cpu usage)", got)
	}
}

func TestPlaceTieBreaksOnMemoryThenID(t *testing.T) {
	nodes := []Candidate{
		node("z", Running, 4000, 500, 8<<30, 2<<30),
		node("y", Running, 4000, 500, 8<<30, 1<<30),
	}
	got, err := Place(desired(100, 1<<20), nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "y" {
		t.Fatalf("got %q, want y (lowest memory usage)", got)
	}

	nodes2 := []Candidate{
		node("b", Running, 4000, 500, 8<<30, 1<<30),
		node("a", Running, 4000, 500, 8<<30, 1<<30),
	}
	got2, err := Place(desired(100, 1<<20), nodes2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got2 != "a" {
		t.Fatalf("got %q, want a (lexicographic id tie-break)", got2)
	}
}

func TestPlaceExcludesNonRunningNodes(t *testing.T) {
	nodes := []Candidate{
		node("a", 0 /* scheduling */, 4000, 0, 8<<30, 0),
	}
	_, err := Place(desired(100, 1<<20), nodes)
	if err != ErrNoFit {
		t.Fatalf("got %v, want ErrNoFit", err)
	}
}

func TestPlaceExcludesNodesMissingResource(t *testing.T) {
	nodes := []Candidate{
		{ID: "a", Status: Running, Resource: nil},
	}
	_, err := Place(desired(100, 1<<20), nodes)
	if err != ErrNoFit {
		t.Fatalf("got %v, want ErrNoFit", err)
	}
}

func TestPlaceReturnsNoFitWhenNothingFits(t *testing.T) {
	nodes := []Candidate{
		node("a", Running, 1000, 999, 8<<30, 1<<30),
	}
	_, err := Place(desired(500, 1<<20), nodes)
	if err != ErrNoFit {
		t.Fatalf("got %v, want ErrNoFit", err)
	}
}

func TestPlaceNeverPanicsOnNilDesired(t *testing.T) {
	_, err := Place(nil, []Candidate{node("a", Running, 1000, 0, 8<<30, 0)})
	if err != ErrNoFit {
		t.Fatalf("got %v, want ErrNoFit", err)
	}
}
