// Package orchestrator implements the event loop and handlers (C7): the sole
// mutator of the node registry (C3) and per-node instance stores. Listeners
// (the gRPC layer, C8) and forwarder goroutines only enqueue events; this
// package is where every state transition actually happens, behind one
// mutex, per event, in order.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/scheduler/internal/convert"
	"github.com/fleetd-sh/fleetd/scheduler/internal/instanceproxy"
	"github.com/fleetd-sh/fleetd/scheduler/internal/placement"
	"github.com/fleetd-sh/fleetd/scheduler/internal/registry"
	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// eventQueueCapacity bounds the event channel; producers block when full,
// which is the system's only backpressure mechanism.
const eventQueueCapacity = 32

// ErrInstanceNotFound is returned on InstanceStopEvent/InstanceDestroyEvent
// for an instance the orchestrator has no record of, so grpcapi can map it
// to codes.NotFound instead of codes.Internal.
var ErrInstanceNotFound = errors.New("instance not found")

// Orchestrator owns the node registry and every in-flight instance, and is
// the only component allowed to mutate either.
type Orchestrator struct {
	mu           sync.Mutex
	nodes        *registry.Registry
	instances    map[string]*instanceproxy.ScheduledInstance
	instanceNode map[string]string // instance id -> node id

	upstream   registry.UpstreamSender
	subnetSeq  int
	events     chan Event
	logger     *zap.Logger
}

// New creates an Orchestrator with an empty registry. Call Run to start
// consuming events, and SetUpstream once the controller dialer connects.
func New(logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		nodes:        registry.NewRegistry(),
		instances:    make(map[string]*instanceproxy.ScheduledInstance),
		instanceNode: make(map[string]string),
		events:       make(chan Event, eventQueueCapacity),
		logger:       logger.Named("orchestrator"),
	}
}

// Events returns the send side of the event queue, used by the gRPC layer
// and forwarder goroutines to enqueue work.
func (o *Orchestrator) Events() chan<- Event {
	return o.events
}

// SetUpstream installs the controller-bound sender used by NodeRegister to
// open each node's status stream. Safe to call concurrently with Run.
func (o *Orchestrator) SetUpstream(u registry.UpstreamSender) {
	o.mu.Lock()
	o.upstream = u
	o.mu.Unlock()
}

// Run is the single consumer loop. It blocks until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-o.events:
			o.dispatch(ctx, ev)
		}
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case NodeRegisterEvent:
		o.handleNodeRegister(ctx, e)
	case NodeUnregisterEvent:
		o.handleNodeUnregister(e)
	case NodeStatusEvent:
		o.handleNodeStatus(e)
	case NodeStreamCrashEvent:
		o.teardownNode(e.ID, "Node stream crashed")
	case InstanceCreateEvent:
		o.handleInstanceCreate(ctx, e)
	case InstanceStopEvent:
		o.handleInstanceStop(ctx, e)
	case InstanceDestroyEvent:
		o.handleInstanceDestroy(ctx, e)
	case InstanceTerminatedEvent:
		o.handleInstanceTerminated(e.ID)
	case InstanceStreamCrashEvent:
		o.handleInstanceTerminated(e.ID) // removal only; the forwarder already emitted the Failed frame
	default:
		o.logger.Warn("unknown event type", zap.String("type", fmt.Sprintf("%T", ev)))
	}
}

// ─── Node handlers ───────────────────────────────────────────────────────────

func (o *Orchestrator) handleNodeRegister(ctx context.Context, e NodeRegisterEvent) {
	id := uuid.NewString()
	subnet := o.allocateSubnet()

	node := registry.New(id, e.RemoteAddr)
	if err := node.Connect(ctx); err != nil {
		o.logger.Warn("node register: agent connect failed", zap.String("remote_addr", e.RemoteAddr), zap.Error(err))
		e.Reply <- NodeRegisterReply{Code: 1, Description: err.Error()}
		return
	}

	o.mu.Lock()
	up := o.upstream
	o.mu.Unlock()
	if up != nil {
		node.OpenNodeStatusStream(ctx, up)
	}

	o.mu.Lock()
	o.nodes.Upsert(id, node)
	o.mu.Unlock()

	o.logger.Info("node registered", zap.String("node_id", id), zap.String("subnet", subnet))
	e.Reply <- NodeRegisterReply{Code: 0, ID: id, Subnet: subnet}
}

// allocateSubnet hands out sequential /24s, e.g. 10.0.0.0/24, 10.1.0.0/24.
// Resolves the distilled spec's Open Question on IP allocation: the
// scheduler allocates at register time rather than relying on a racy
// persisted counter.
func (o *Orchestrator) allocateSubnet() string {
	o.mu.Lock()
	n := o.subnetSeq
	o.subnetSeq++
	o.mu.Unlock()
	return fmt.Sprintf("10.%d.0.0/24", n)
}

func (o *Orchestrator) handleNodeUnregister(e NodeUnregisterEvent) {
	if err := o.teardownNode(e.ID, "Node unregistered"); err != nil {
		e.Reply <- err
		return
	}
	e.Reply <- nil
}

func (o *Orchestrator) handleNodeStatus(e NodeStatusEvent) {
	o.mu.Lock()
	node, ok := o.nodes.Get(e.Frame.Id)
	o.mu.Unlock()
	if !ok {
		e.Reply <- errors.New("node not found")
		return
	}
	e.Reply <- node.UpdateStatus(convert.StatusRunning, "", e.Frame.Resource)
}

// teardownNode transitions a node to Stopping, fails out every instance it
// hosts, then removes it from the registry. Used by both NodeUnregister and
// NodeStreamCrash (which pass a different cause string).
func (o *Orchestrator) teardownNode(id, cause string) error {
	o.mu.Lock()
	node, ok := o.nodes.Get(id)
	if !ok {
		o.mu.Unlock()
		return errors.New("node not found")
	}
	node.Status = 3 // Stopping

	var failing []*instanceproxy.ScheduledInstance
	for _, instID := range node.Instances.Enumerate() {
		if si, ok := o.instances[instID]; ok {
			failing = append(failing, si)
			delete(o.instances, instID)
			delete(o.instanceNode, instID)
		}
	}
	o.nodes.Delete(id)
	o.mu.Unlock()

	for _, si := range failing {
		if err := si.ChangeStatus(convert.StatusFailed, cause); err != nil {
			o.logger.Debug("teardown: controller disconnected while failing instance", zap.Error(err))
		}
	}
	node.Close()
	return nil
}

// ─── Instance handlers ───────────────────────────────────────────────────────

func (o *Orchestrator) handleInstanceCreate(ctx context.Context, e InstanceCreateEvent) {
	inst := e.Instance
	if inst.Id == "" {
		inst.Id = uuid.NewString()
	}
	si := instanceproxy.New(inst, replyAdapter{e.Reply})

	o.mu.Lock()
	var candidates []placement.Candidate
	o.nodes.Each(func(id string, n *registry.RegisteredNode) {
		candidates = append(candidates, placement.Candidate{ID: id, Status: n.Status, Resource: n.Resource})
	})
	o.mu.Unlock()

	nodeID, err := placement.Place(inst.Resource, candidates)
	if err != nil {
		o.failAndClose(si, e.Reply, "no node fits the desired resource")
		return
	}

	o.mu.Lock()
	node, ok := o.nodes.Get(nodeID)
	if !ok {
		o.mu.Unlock()
		o.failAndClose(si, e.Reply, "placed node disappeared before creation")
		return
	}
	si.NodeID = nodeID
	o.instances[inst.Id] = si
	o.instanceNode[inst.Id] = nodeID
	node.Instances.Upsert(inst.Id, inst.Id)
	o.mu.Unlock()

	if err := si.ChangeStatus(convert.StatusScheduling, "scheduled"); err != nil {
		o.logger.Debug("create: controller disconnected while reporting scheduled", zap.Error(err))
	}

	stream, err := node.CreateInstance(ctx, inst)
	if err != nil {
		o.mu.Lock()
		delete(o.instances, inst.Id)
		delete(o.instanceNode, inst.Id)
		node.Instances.Delete(inst.Id)
		o.mu.Unlock()
		o.failAndClose(si, e.Reply, err.Error())
		return
	}

	go o.forwardInstanceStream(stream, inst.Id, e.Reply)
}

// failAndClose reports a terminal Failed status for an instance that never
// reached a node, then closes reply so the gRPC stream on the other end
// completes after that single frame.
func (o *Orchestrator) failAndClose(si *instanceproxy.ScheduledInstance, reply chan *schedpb.InstanceStatus, reason string) {
	if err := si.ChangeStatus(convert.StatusFailed, reason); err != nil {
		o.logger.Debug("create: controller disconnected while reporting failure", zap.Error(err))
	}
	close(reply)
}

// forwardInstanceStream reads agent InstanceStatus frames, translates them to
// scheduler vocabulary, and forwards them to the controller-bound reply
// channel until the instance reaches a terminal state or the stream errors.
// It owns reply and closes it exactly once, on exit.
func (o *Orchestrator) forwardInstanceStream(stream agentpb.InstanceService_CreateClient, id string, reply chan *schedpb.InstanceStatus) {
	defer close(reply)
	for {
		frame, err := stream.Recv()
		if err != nil {
			reply <- &schedpb.InstanceStatus{Id: id, Status: convert.StatusFailed, StatusDescription: "instance stream crashed"}
			o.events <- InstanceStreamCrashEvent{ID: id}
			return
		}
		sf := convert.InstanceStatusFromAgent(frame)
		reply <- sf
		if sf.Status == convert.StatusTerminated || sf.Status == convert.StatusFailed {
			o.events <- InstanceTerminatedEvent{ID: id}
			return
		}
	}
}

func (o *Orchestrator) handleInstanceStop(ctx context.Context, e InstanceStopEvent) {
	node, ok := o.nodeForInstance(e.ID)
	if !ok {
		e.Reply <- ErrInstanceNotFound
		return
	}
	e.Reply <- node.StopInstance(ctx, e.ID)
}

func (o *Orchestrator) handleInstanceDestroy(ctx context.Context, e InstanceDestroyEvent) {
	node, ok := o.nodeForInstance(e.ID)
	if !ok {
		e.Reply <- ErrInstanceNotFound
		return
	}
	e.Reply <- node.KillInstance(ctx, e.ID)
}

func (o *Orchestrator) nodeForInstance(id string) (*registry.RegisteredNode, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	nodeID, ok := o.instanceNode[id]
	if !ok {
		return nil, false
	}
	return o.nodes.Get(nodeID)
}

func (o *Orchestrator) handleInstanceTerminated(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if nodeID, ok := o.instanceNode[id]; ok {
		if node, ok := o.nodes.Get(nodeID); ok {
			node.Instances.Delete(id)
		}
	}
	delete(o.instances, id)
	delete(o.instanceNode, id)
}

// replyAdapter adapts a chan *schedpb.InstanceStatus to instanceproxy.ReplySender.
type replyAdapter struct {
	ch chan *schedpb.InstanceStatus
}

func (r replyAdapter) Send(s *schedpb.InstanceStatus) error {
	select {
	case r.ch <- s:
		return nil
	default:
		// The channel is buffered with room for exactly one pending frame by
		// convention at the call sites in this package; a full channel here
		// means the forwarder/consumer has stopped reading, which the spec
		// treats as "controller disconnected".
		return errors.New("instanceproxy: reply channel full or closed")
	}
}
