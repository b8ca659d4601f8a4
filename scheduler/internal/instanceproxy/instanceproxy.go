// Package instanceproxy implements the ScheduledInstance proxy (C5): an
// Instance plus its placement and the downstream sender used to push status
// frames to the controller.
package instanceproxy

import (
	"github.com/fleetd-sh/fleetd/scheduler/internal/convert"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// ReplySender is the one-shot-or-multi-shot channel handle the orchestrator
// hands to a ScheduledInstance at creation time; every status transition is
// pushed onto it as an InstanceStatus frame bound for the controller.
type ReplySender interface {
	Send(*schedpb.InstanceStatus) error
}

// ScheduledInstance owns an Instance plus its placement (empty NodeID until
// placement succeeds) and the controller-bound reply sender.
type ScheduledInstance struct {
	Instance *schedpb.Instance
	NodeID   string // empty until placement succeeds
	reply    ReplySender
}

// New creates a ScheduledInstance before placement, with NodeID empty.
func New(inst *schedpb.Instance, reply ReplySender) *ScheduledInstance {
	return &ScheduledInstance{Instance: inst, reply: reply}
}

// ChangeStatus updates the local status and pushes a controller-bound
// InstanceStatus frame onto the reply sender. The current resource is
// embedded only when the new status is Running, to avoid publishing stale
// telemetry for an instance that is not actually up. Sender failures
// propagate to the caller, which the orchestrator treats as "controller
// disconnected" and proceeds to tear the instance down locally.
func (s *ScheduledInstance) ChangeStatus(newStatus int32, description string) error {
	s.Instance.Status = newStatus

	frame := &schedpb.InstanceStatus{
		Id:                s.Instance.Id,
		Status:            newStatus,
		StatusDescription: description,
	}
	if newStatus == convert.StatusRunning {
		frame.Resource = s.Instance.Resource
	}
	return s.reply.Send(frame)
}
