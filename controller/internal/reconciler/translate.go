package reconciler

import (
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
	"github.com/fleetd-sh/fleetd/shared/types"
)

// instanceFromWorkload builds an unscheduled Instance from a Workload
// template. Id is left empty — the Scheduler assigns one on Create.
func instanceFromWorkload(wl *types.Workload) *schedpb.Instance {
	ports := make([]*schedpb.Port, 0, len(wl.Ports))
	for _, p := range wl.Ports {
		ports = append(ports, &schedpb.Port{Source: p.Source, Destination: p.Destination})
	}
	return &schedpb.Instance{
		Name:        wl.Name,
		Type:        schedpb.InstanceType_CONTAINER,
		Uri:         wl.URI,
		Environment: append([]string(nil), wl.Environment...),
		Resource: &schedpb.Resource{
			Limit: &schedpb.ResourceSummary{
				Cpu:    wl.Resource.CPU,
				Memory: wl.Resource.Memory,
				Disk:   wl.Resource.Disk,
			},
		},
		Ports: ports,
	}
}
