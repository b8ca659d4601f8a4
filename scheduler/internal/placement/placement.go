// Package placement implements the pure bin-packing decision used to choose
// which node a new instance lands on. It has no dependency on the event loop,
// the registry, or any gRPC type, which keeps it trivially testable.
package placement

import (
	"errors"
	"sort"

	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// ErrNoFit is returned when no candidate node has room for the desired instance.
var ErrNoFit = errors.New("placement: no node fits the desired resource")

// Candidate is the minimal view of a node the placement policy needs: its id,
// current status, and most recent resource snapshot.
type Candidate struct {
	ID       string
	Status   int32
	Resource *schedpb.Resource
}

// Running is the scheduler's own wire status code for a node in state Running.
// Kept local to avoid an import of the convert package for a single constant.
const Running int32 = 2

// Place chooses a node for desired among nodes, deterministically. Candidate
// nodes must be Running and carry a resource snapshot; the fit predicate
// requires, for cpu/memory/disk independently, that the node's available
// capacity (limit - usage) be at least the desired resource's limit. Ties are
// broken by lowest current CPU usage, then lowest memory usage, then
// lexicographically smallest node id. Place never panics and returns ErrNoFit
// when no candidate qualifies.
func Place(desired *schedpb.Resource, nodes []Candidate) (string, error) {
	if desired == nil || desired.Limit == nil {
		return "", ErrNoFit
	}

	var fit []Candidate
	for _, n := range nodes {
		if n.Status != Running || n.Resource == nil || n.Resource.Limit == nil || n.Resource.Usage == nil {
			continue
		}
		if fits(n.Resource, desired.Limit) {
			fit = append(fit, n)
		}
	}
	if len(fit) == 0 {
		return "", ErrNoFit
	}

	sort.Slice(fit, func(i, j int) bool {
		ui, uj := fit[i].Resource.Usage, fit[j].Resource.Usage
		if ui.Cpu != uj.Cpu {
			return ui.Cpu < uj.Cpu
		}
		if ui.Memory != uj.Memory {
			return ui.Memory < uj.Memory
		}
		return fit[i].ID < fit[j].ID
	})
	return fit[0].ID, nil
}

func fits(have *schedpb.Resource, want *schedpb.ResourceSummary) bool {
	return have.Limit.Cpu-have.Usage.Cpu >= want.Cpu &&
		have.Limit.Memory-have.Usage.Memory >= want.Memory &&
		have.Limit.Disk-have.Usage.Disk >= want.Disk
}
