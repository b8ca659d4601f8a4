package orchestrator

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/fleetd-sh/fleetd/scheduler/internal/convert"
	"github.com/fleetd-sh/fleetd/scheduler/internal/registry"
	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

func testLogger() *zap.Logger { return zap.NewNop() }

// fakeCreateStream is a canned agentpb.InstanceService_CreateClient: Recv
// drains frames off a channel until it is closed, then returns io.EOF,
// simulating the agent ending the stream without a terminal frame.
type fakeCreateStream struct {
	grpc.ClientStream
	frames chan *agentpb.InstanceStatus
}

func newFakeCreateStream() *fakeCreateStream {
	return &fakeCreateStream{frames: make(chan *agentpb.InstanceStatus)}
}

func (s *fakeCreateStream) Recv() (*agentpb.InstanceStatus, error) {
	f, ok := <-s.frames
	if !ok {
		return nil, io.EOF
	}
	return f, nil
}

// fakeAgentClient is a hand-rolled agentpb.InstanceServiceClient standing in
// for a Node Agent. Create hands back a fresh stream per instance id, keyed
// so a test can drive several instances on the same node independently.
type fakeAgentClient struct {
	mu      sync.Mutex
	streams map[string]*fakeCreateStream
	signals []agentpb.Signal
}

func newFakeAgentClient() *fakeAgentClient {
	return &fakeAgentClient{streams: make(map[string]*fakeCreateStream)}
}

func (c *fakeAgentClient) Create(ctx context.Context, in *agentpb.Instance, opts ...grpc.CallOption) (agentpb.InstanceService_CreateClient, error) {
	s := newFakeCreateStream()
	c.mu.Lock()
	c.streams[in.Id] = s
	c.mu.Unlock()
	return s, nil
}

func (c *fakeAgentClient) streamFor(id string) *fakeCreateStream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streams[id]
}

func (c *fakeAgentClient) closeAllStreams() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.streams {
		close(s.frames)
	}
}

func (c *fakeAgentClient) Signal(ctx context.Context, in *agentpb.SignalInstruction, opts ...grpc.CallOption) (*agentpb.InstanceAck, error) {
	c.mu.Lock()
	c.signals = append(c.signals, in.Signal)
	c.mu.Unlock()
	return &agentpb.InstanceAck{}, nil
}

func runningNode(id string, client agentpb.InstanceServiceClient, cpuLimit, memLimit, diskLimit uint64) *registry.RegisteredNode {
	n := registry.NewWithClient(id, "127.0.0.1", client)
	n.Status = convert.StatusRunning
	n.Resource = &schedpb.Resource{
		Limit: &schedpb.ResourceSummary{Cpu: cpuLimit, Memory: memLimit, Disk: diskLimit},
		Usage: &schedpb.ResourceSummary{},
	}
	return n
}

func tinyResource(cpu uint64) *schedpb.Resource {
	return &schedpb.Resource{Limit: &schedpb.ResourceSummary{Cpu: cpu, Memory: 1 << 20, Disk: 1 << 20}}
}

// ─── Round-trip / idempotence properties ────────────────────────────────────

func TestRegisterUnregisterRoundTripLeavesRegistryEmpty(t *testing.T) {
	o := New(testLogger())

	reply := make(chan NodeRegisterReply, 1)
	o.handleNodeRegister(context.Background(), NodeRegisterEvent{RemoteAddr: "127.0.0.1", Reply: reply})
	got := <-reply
	if got.Code != 0 || got.ID == "" {
		t.Fatalf("got %+v, want a successful registration", got)
	}
	if _, ok := o.nodes.Get(got.ID); !ok {
		t.Fatalf("expected node %s to be present after register", got.ID)
	}

	unreg := make(chan error, 1)
	o.handleNodeUnregister(NodeUnregisterEvent{ID: got.ID, Reply: unreg})
	if err := <-unreg; err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if o.nodes.Len() != 0 {
		t.Fatalf("got %d nodes, want registry empty after unregister", o.nodes.Len())
	}
}

func TestTwoConsecutiveStopsSecondReturnsNotFound(t *testing.T) {
	o := New(testLogger())
	node := runningNode("n1", newFakeAgentClient(), 2000, 4<<30, 50<<30)
	o.nodes.Upsert("n1", node)
	o.instanceNode["i1"] = "n1"
	node.Instances.Upsert("i1", "i1")

	first := make(chan error, 1)
	o.handleInstanceStop(context.Background(), InstanceStopEvent{ID: "i1", Reply: first})
	if err := <-first; err != nil {
		t.Fatalf("first stop: %v", err)
	}

	// Simulate the instance reaching its terminal state, as
	// handleInstanceTerminated would on the real Stopping->Terminated path.
	o.handleInstanceTerminated("i1")

	second := make(chan error, 1)
	o.handleInstanceStop(context.Background(), InstanceStopEvent{ID: "i1", Reply: second})
	if err := <-second; !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("got %v, want ErrInstanceNotFound on the second stop", err)
	}
}

// ─── Scenario S2: no fit ────────────────────────────────────────────────────

func TestS2NoFitProducesSingleFailedFrameThenCloses(t *testing.T) {
	o := New(testLogger())
	node := runningNode("n1", newFakeAgentClient(), 100, 100, 100)
	o.nodes.Upsert("n1", node)

	inst := &schedpb.Instance{Id: "i1", Resource: tinyResource(500)}
	reply := make(chan *schedpb.InstanceStatus, 1)
	o.handleInstanceCreate(context.Background(), InstanceCreateEvent{Instance: inst, Reply: reply})

	frame, ok := <-reply
	if !ok {
		t.Fatalf("expected one frame before the reply channel closes")
	}
	if frame.Status != convert.StatusFailed || !strings.Contains(frame.StatusDescription, "resource") {
		t.Fatalf("got %+v, want a Failed frame mentioning resources", frame)
	}
	if _, ok := <-reply; ok {
		t.Fatalf("expected the reply channel to be closed after the single Failed frame")
	}
	if node.Instances.Len() != 0 {
		t.Fatalf("expected no instance admitted onto the node after a placement failure")
	}
}

// ─── Scenario S3: tie-break determinism ────────────────────────────────────

func TestS3TieBreakIsDeterministic(t *testing.T) {
	o := New(testLogger())
	clientA, clientB := newFakeAgentClient(), newFakeAgentClient()
	nodeA := runningNode("a", clientA, 2000, 4<<30, 50<<30)
	nodeB := runningNode("b", clientB, 2000, 4<<30, 50<<30)
	o.nodes.Upsert("a", nodeA)
	o.nodes.Upsert("b", nodeB)
	t.Cleanup(func() { clientA.closeAllStreams(); clientB.closeAllStreams() })

	for _, id := range []string{"i1", "i2"} {
		inst := &schedpb.Instance{Id: id, Resource: tinyResource(100)}
		reply := make(chan *schedpb.InstanceStatus, 1)
		o.handleInstanceCreate(context.Background(), InstanceCreateEvent{Instance: inst, Reply: reply})
		<-reply // Scheduling

		got, ok := o.instanceNode[id]
		if !ok || got != "a" {
			t.Fatalf("instance %s landed on %q, want the lexicographically smallest node a", id, got)
		}
	}

	if nodeA.Instances.Len() != 2 {
		t.Fatalf("got %d instances on node a, want 2", nodeA.Instances.Len())
	}
	if nodeB.Instances.Len() != 0 {
		t.Fatalf("got %d instances on node b, want 0", nodeB.Instances.Len())
	}
}

// ─── Scenario S1: happy path ────────────────────────────────────────────────

func TestS1HappyPathFromScheduleThroughStop(t *testing.T) {
	o := New(testLogger())
	client := newFakeAgentClient()
	node := runningNode("n1", client, 2000, 4<<30, 50<<30)
	o.nodes.Upsert("n1", node)

	inst := &schedpb.Instance{Id: "i1", Resource: tinyResource(500)}
	reply := make(chan *schedpb.InstanceStatus, 1)
	o.handleInstanceCreate(context.Background(), InstanceCreateEvent{Instance: inst, Reply: reply})

	if f := <-reply; f.Status != convert.StatusScheduling {
		t.Fatalf("got status %d, want Scheduling", f.Status)
	}

	stream := client.streamFor("i1")
	stream.frames <- &agentpb.InstanceStatus{Id: "i1", Status: convert.StatusStarting}
	if f := <-reply; f.Status != convert.StatusStarting {
		t.Fatalf("got status %d, want Starting", f.Status)
	}

	stream.frames <- &agentpb.InstanceStatus{Id: "i1", Status: convert.StatusRunning}
	if f := <-reply; f.Status != convert.StatusRunning {
		t.Fatalf("got status %d, want Running", f.Status)
	}

	stopReply := make(chan error, 1)
	o.handleInstanceStop(context.Background(), InstanceStopEvent{ID: "i1", Reply: stopReply})
	if err := <-stopReply; err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(client.signals) != 1 || client.signals[0] != agentpb.Signal_STOP {
		t.Fatalf("got signals %v, want a single STOP", client.signals)
	}

	stream.frames <- &agentpb.InstanceStatus{Id: "i1", Status: convert.StatusStopping}
	if f := <-reply; f.Status != convert.StatusStopping {
		t.Fatalf("got status %d, want Stopping", f.Status)
	}

	stream.frames <- &agentpb.InstanceStatus{Id: "i1", Status: convert.StatusTerminated}
	if f := <-reply; f.Status != convert.StatusTerminated {
		t.Fatalf("got status %d, want Terminated", f.Status)
	}
	if _, ok := <-reply; ok {
		t.Fatalf("expected reply to be closed once the instance terminates")
	}

	ev := <-o.events
	o.dispatch(context.Background(), ev)
	if node.Instances.Len() != 0 {
		t.Fatalf("expected i1 to be removed from the node's instance set after termination")
	}
	if _, ok := o.instanceNode["i1"]; ok {
		t.Fatalf("expected i1 to be removed from instanceNode after termination")
	}
}

// ─── Scenario S4: node crash ────────────────────────────────────────────────

func TestS4NodeCrashFailsInstancesBeforeRemoval(t *testing.T) {
	o := New(testLogger())
	client := newFakeAgentClient()
	node := runningNode("n1", client, 2000, 4<<30, 50<<30)
	o.nodes.Upsert("n1", node)
	t.Cleanup(client.closeAllStreams)

	reply1 := make(chan *schedpb.InstanceStatus, 1)
	o.handleInstanceCreate(context.Background(), InstanceCreateEvent{Instance: &schedpb.Instance{Id: "i1", Resource: tinyResource(100)}, Reply: reply1})
	<-reply1 // Scheduling

	reply2 := make(chan *schedpb.InstanceStatus, 1)
	o.handleInstanceCreate(context.Background(), InstanceCreateEvent{Instance: &schedpb.Instance{Id: "i2", Resource: tinyResource(100)}, Reply: reply2})
	<-reply2 // Scheduling

	o.dispatch(context.Background(), NodeStreamCrashEvent{ID: "n1"})

	f1 := <-reply1
	f2 := <-reply2
	if f1.Status != convert.StatusFailed || f2.Status != convert.StatusFailed {
		t.Fatalf("expected both instances to receive a Failed frame on node crash, got %+v and %+v", f1, f2)
	}
	if _, ok := o.nodes.Get("n1"); ok {
		t.Fatalf("expected n1 to be removed from the registry after teardown")
	}

	stopReply := make(chan error, 1)
	o.handleInstanceStop(context.Background(), InstanceStopEvent{ID: "i1", Reply: stopReply})
	if err := <-stopReply; !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("got %v, want ErrInstanceNotFound once the node is gone", err)
	}
}

// ─── Scenario S5: instance crash ────────────────────────────────────────────

func TestS5InstanceStreamCrashProducesFailedFrameAndRemovesInstance(t *testing.T) {
	o := New(testLogger())
	client := newFakeAgentClient()
	node := runningNode("n1", client, 2000, 4<<30, 50<<30)
	o.nodes.Upsert("n1", node)

	reply := make(chan *schedpb.InstanceStatus, 1)
	o.handleInstanceCreate(context.Background(), InstanceCreateEvent{Instance: &schedpb.Instance{Id: "i1", Resource: tinyResource(100)}, Reply: reply})
	<-reply // Scheduling

	close(client.streamFor("i1").frames) // the agent drops the stream without a Terminated frame

	frame := <-reply
	if frame.Status != convert.StatusFailed || !strings.Contains(frame.StatusDescription, "stream crashed") {
		t.Fatalf("got %+v, want a Failed frame mentioning the stream crash", frame)
	}
	if _, ok := <-reply; ok {
		t.Fatalf("expected reply to be closed after the crash frame")
	}

	ev := <-o.events
	o.dispatch(context.Background(), ev)
	if node.Instances.Len() != 0 {
		t.Fatalf("expected i1 to be removed from the node after the stream crash")
	}
	if _, ok := o.instances["i1"]; ok {
		t.Fatalf("expected i1 to be removed from the instances map after the stream crash")
	}
}

// ─── Invariant: unknown node/instance ids are rejected ─────────────────────

func TestNodeStatusForUnknownNodeReturnsError(t *testing.T) {
	o := New(testLogger())
	reply := make(chan error, 1)
	o.handleNodeStatus(NodeStatusEvent{Frame: &schedpb.NodeStatus{Id: "missing"}, Reply: reply})
	if err := <-reply; err == nil {
		t.Fatalf("expected an error for an unregistered node")
	}
}

func TestStopUnknownInstanceReturnsNotFound(t *testing.T) {
	o := New(testLogger())
	reply := make(chan error, 1)
	o.handleInstanceStop(context.Background(), InstanceStopEvent{ID: "missing", Reply: reply})
	if err := <-reply; !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("got %v, want ErrInstanceNotFound", err)
	}
}
