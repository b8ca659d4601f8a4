package orchestrator

import schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"

// Event is the tagged union consumed by the orchestrator's single event
// loop. Each concrete type carries its payload plus a reply channel: one-shot
// for unary RPCs, multi-shot (closed by the loop when done) for streaming
// ones.
type Event interface {
	isEvent()
}

// NodeRegisterReply is the one-shot reply to a NodeRegisterEvent.
type NodeRegisterReply struct {
	Code        uint32
	Description string
	Subnet      string
	ID          string
}

// NodeRegisterEvent requests a new node be admitted into the registry.
type NodeRegisterEvent struct {
	Certificate string
	RemoteAddr  string
	Reply       chan NodeRegisterReply
}

func (NodeRegisterEvent) isEvent() {}

// NodeUnregisterEvent requests an existing node be torn down.
type NodeUnregisterEvent struct {
	ID    string
	Reply chan error
}

func (NodeUnregisterEvent) isEvent() {}

// NodeStatusEvent applies one NodeStatus frame received from an agent.
type NodeStatusEvent struct {
	Frame *schedpb.NodeStatus
	Reply chan error
}

func (NodeStatusEvent) isEvent() {}

// NodeStreamCrashEvent signals that a node's status stream errored.
type NodeStreamCrashEvent struct {
	ID string
}

func (NodeStreamCrashEvent) isEvent() {}

// InstanceCreateEvent requests a new instance be scheduled and created.
// Reply is multi-shot: the loop pushes every InstanceStatus frame the
// instance produces, and closes the channel when the instance reaches a
// terminal state or the creation attempt fails outright.
type InstanceCreateEvent struct {
	Instance *schedpb.Instance
	Reply    chan *schedpb.InstanceStatus
}

func (InstanceCreateEvent) isEvent() {}

// InstanceStopEvent requests a graceful stop of a running instance.
type InstanceStopEvent struct {
	ID    string
	Reply chan error
}

func (InstanceStopEvent) isEvent() {}

// InstanceDestroyEvent requests a forceful teardown of an instance.
type InstanceDestroyEvent struct {
	ID    string
	Reply chan error
}

func (InstanceDestroyEvent) isEvent() {}

// InstanceTerminatedEvent signals that an instance reached a terminal state
// through the ordinary lifecycle (not a stream crash).
type InstanceTerminatedEvent struct {
	ID string
}

func (InstanceTerminatedEvent) isEvent() {}

// InstanceStreamCrashEvent signals that an instance's status stream errored
// before the instance reached a terminal state.
type InstanceStreamCrashEvent struct {
	ID string
}

func (InstanceStreamCrashEvent) isEvent() {}
