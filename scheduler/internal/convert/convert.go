// Package convert provides total, lossless translations between the three
// independent proto wire vocabularies that meet at the Scheduler: its own
// (package scheduler), the Node Agent's (package agent), and the
// Controller's (package controller).
//
// The Scheduler is a client of the agent's InstanceService and a client of
// the controller's NodeService, so conversions run in both directions for
// Instance/Resource/ResourceSummary/Port/InstanceStatus (scheduler<->agent)
// and one direction for node status (scheduler->controller, widening the
// scheduler's own node status into the controller's distinct NodeState
// enum). The controller is itself a client of the scheduler's InstanceService,
// so Instance/InstanceStatus frames reach it already in scheduler vocabulary
// and need no further translation.
package convert

import (
	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
	controllerpb "github.com/fleetd-sh/fleetd/shared/proto/controller"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// Status codes carried as plain int32 on the wire. Both scheduler and agent
// use the same numbering for Instance/Node status; only the controller's
// NodeState enum is genuinely distinct.
const (
	StatusScheduling int32 = 0
	StatusStarting   int32 = 1
	StatusRunning    int32 = 2
	StatusStopping   int32 = 3
	StatusTerminated int32 = 4
	StatusFailing    int32 = 5
	StatusFailed     int32 = 6
)

// ─── Resource / ResourceSummary / Port: scheduler <-> agent ─────────────────

// ResourceSummaryToAgent converts a scheduler ResourceSummary to its agent twin.
func ResourceSummaryToAgent(r *schedpb.ResourceSummary) *agentpb.ResourceSummary {
	if r == nil {
		return nil
	}
	return &agentpb.ResourceSummary{Cpu: r.Cpu, Memory: r.Memory, Disk: r.Disk}
}

// ResourceSummaryFromAgent converts an agent ResourceSummary to its scheduler twin.
func ResourceSummaryFromAgent(r *agentpb.ResourceSummary) *schedpb.ResourceSummary {
	if r == nil {
		return nil
	}
	return &schedpb.ResourceSummary{Cpu: r.Cpu, Memory: r.Memory, Disk: r.Disk}
}

// ResourceToAgent converts a scheduler Resource to its agent twin.
func ResourceToAgent(r *schedpb.Resource) *agentpb.Resource {
	if r == nil {
		return nil
	}
	return &agentpb.Resource{
		Limit: ResourceSummaryToAgent(r.Limit),
		Usage: ResourceSummaryToAgent(r.Usage),
	}
}

// ResourceFromAgent converts an agent Resource to its scheduler twin.
func ResourceFromAgent(r *agentpb.Resource) *schedpb.Resource {
	if r == nil {
		return nil
	}
	return &schedpb.Resource{
		Limit: ResourceSummaryFromAgent(r.Limit),
		Usage: ResourceSummaryFromAgent(r.Usage),
	}
}

// PortToAgent converts a scheduler Port to its agent twin.
func PortToAgent(p *schedpb.Port) *agentpb.Port {
	if p == nil {
		return nil
	}
	return &agentpb.Port{Source: p.Source, Destination: p.Destination}
}

// PortFromAgent converts an agent Port to its scheduler twin.
func PortFromAgent(p *agentpb.Port) *schedpb.Port {
	if p == nil {
		return nil
	}
	return &schedpb.Port{Source: p.Source, Destination: p.Destination}
}

func portsToAgent(ports []*schedpb.Port) []*agentpb.Port {
	if ports == nil {
		return nil
	}
	out := make([]*agentpb.Port, len(ports))
	for i, p := range ports {
		out[i] = PortToAgent(p)
	}
	return out
}

func portsFromAgent(ports []*agentpb.Port) []*schedpb.Port {
	if ports == nil {
		return nil
	}
	out := make([]*schedpb.Port, len(ports))
	for i, p := range ports {
		out[i] = PortFromAgent(p)
	}
	return out
}

// ─── Instance: scheduler <-> agent ───────────────────────────────────────────

// InstanceToAgent converts a scheduler Instance into the agent's own Instance
// vocabulary, the form sent over the agent's InstanceService.Create RPC.
func InstanceToAgent(in *schedpb.Instance) *agentpb.Instance {
	if in == nil {
		return nil
	}
	env := append([]string(nil), in.Environment...)
	return &agentpb.Instance{
		Id:          in.Id,
		Name:        in.Name,
		Type:        agentpb.InstanceType(in.Type),
		Status:      in.Status,
		Uri:         in.Uri,
		Environment: env,
		Resource:    ResourceToAgent(in.Resource),
		Ports:       portsToAgent(in.Ports),
		Ip:          in.Ip,
	}
}

// InstanceFromAgent converts an agent Instance back into scheduler vocabulary.
func InstanceFromAgent(in *agentpb.Instance) *schedpb.Instance {
	if in == nil {
		return nil
	}
	env := append([]string(nil), in.Environment...)
	return &schedpb.Instance{
		Id:          in.Id,
		Name:        in.Name,
		Type:        schedpb.InstanceType(in.Type),
		Status:      in.Status,
		Uri:         in.Uri,
		Environment: env,
		Resource:    ResourceFromAgent(in.Resource),
		Ports:       portsFromAgent(in.Ports),
		Ip:          in.Ip,
	}
}

// FakeAgentInstance builds a minimal agent Instance carrying only an id, used
// when the scheduler must address an instance by id over a schema (Signal)
// that demands a full Instance message rather than a bare identifier.
func FakeAgentInstance(id string) *agentpb.Instance {
	return &agentpb.Instance{Id: id}
}

// ─── InstanceStatus: scheduler <-> agent ─────────────────────────────────────

// InstanceStatusFromAgent converts an agent InstanceStatus frame into
// scheduler vocabulary, widening unrecognized status codes to Failed rather
// than failing the conversion.
func InstanceStatusFromAgent(s *agentpb.InstanceStatus) *schedpb.InstanceStatus {
	if s == nil {
		return nil
	}
	return &schedpb.InstanceStatus{
		Id:                s.Id,
		Status:            widenInstanceStatus(s.Status),
		StatusDescription: s.StatusDescription,
		Resource:          ResourceFromAgent(s.Resource),
	}
}

// InstanceStatusToAgent converts a scheduler InstanceStatus frame into agent
// vocabulary. Provided for symmetry; the scheduler never originates these
// toward an agent today, but C2's conversions are specified as total in both
// directions.
func InstanceStatusToAgent(s *schedpb.InstanceStatus) *agentpb.InstanceStatus {
	if s == nil {
		return nil
	}
	return &agentpb.InstanceStatus{
		Id:                s.Id,
		Status:            s.Status,
		StatusDescription: s.StatusDescription,
		Resource:          ResourceToAgent(s.Resource),
	}
}

func widenInstanceStatus(code int32) int32 {
	switch code {
	case StatusScheduling, StatusStarting, StatusRunning, StatusStopping, StatusTerminated, StatusFailed:
		return code
	default:
		return StatusFailed
	}
}

func widenNodeStatus(code int32) int32 {
	switch code {
	case StatusStarting, StatusRunning, StatusStopping, StatusTerminated, StatusFailing, StatusFailed:
		return code
	default:
		return StatusFailing
	}
}

// ─── NodeStatus: scheduler -> controller ─────────────────────────────────────

// nodeStatusToState maps the scheduler's own node status codes onto the
// controller's distinct NodeState enum. Unknown codes widen to Failing.
func nodeStatusToState(code int32) controllerpb.NodeState {
	switch widenNodeStatus(code) {
	case StatusStarting:
		return controllerpb.NodeState_REGISTERING
	case StatusRunning:
		return controllerpb.NodeState_REGISTERED
	case StatusStopping:
		return controllerpb.NodeState_UNREGISTERING
	case StatusTerminated:
		return controllerpb.NodeState_UNREGISTERED
	case StatusFailing, StatusFailed:
		return controllerpb.NodeState_FAILING
	default:
		return controllerpb.NodeState_FAILING
	}
}

// ControllerNodeStatusFromScheduler builds the frame the Scheduler forwards
// upstream over UpdateNodeStatus from its own NodeStatus plus the set of
// instance ids currently placed on that node.
func ControllerNodeStatusFromScheduler(s *schedpb.NodeStatus, instanceIDs []string) *controllerpb.ControllerNodeStatus {
	if s == nil {
		return nil
	}
	return &controllerpb.ControllerNodeStatus{
		Id:                s.Id,
		State:             nodeStatusToState(s.Status),
		StatusDescription: s.StatusDescription,
		Resource:          resourceToController(s.Resource),
		InstanceIds:       append([]string(nil), instanceIDs...),
	}
}

func resourceToController(r *schedpb.Resource) *controllerpb.Resource {
	if r == nil {
		return nil
	}
	return &controllerpb.Resource{
		Limit: resourceSummaryToController(r.Limit),
		Usage: resourceSummaryToController(r.Usage),
	}
}

func resourceSummaryToController(r *schedpb.ResourceSummary) *controllerpb.ResourceSummary {
	if r == nil {
		return nil
	}
	return &controllerpb.ResourceSummary{Cpu: r.Cpu, Memory: r.Memory, Disk: r.Disk}
}
