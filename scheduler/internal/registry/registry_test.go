package registry

import (
	"context"
	"errors"
	"io"
	"testing"

	"google.golang.org/grpc"

	"github.com/fleetd-sh/fleetd/scheduler/internal/convert"
	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// fakeUpstream records every frame handed to Send, standing in for the
// controller dialer. notify fires once per Send so tests can synchronize
// with the node's background forwarder goroutine.
type fakeUpstream struct {
	frames []*schedpb.NodeStatus
	ids    [][]string
	err    error
	notify chan struct{}
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{notify: make(chan struct{}, 8)}
}

func (u *fakeUpstream) Send(status *schedpb.NodeStatus, instanceIDs []string) error {
	if u.err != nil {
		return u.err
	}
	u.frames = append(u.frames, status)
	u.ids = append(u.ids, instanceIDs)
	u.notify <- struct{}{}
	return nil
}

// fakeCreateStream is a canned agentpb.InstanceService_CreateClient: Recv
// drains frames off a channel until it is closed, then returns io.EOF.
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

// fakeAgentClient is a hand-rolled agentpb.InstanceServiceClient: Create
// returns a canned stream (or createErr), Signal records every call.
type fakeAgentClient struct {
	stream    *fakeCreateStream
	createErr error
	signalErr error
	signals   []agentpb.Signal
	lastID    string
}

func (c *fakeAgentClient) Create(ctx context.Context, in *agentpb.Instance, opts ...grpc.CallOption) (agentpb.InstanceService_CreateClient, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	return c.stream, nil
}

func (c *fakeAgentClient) Signal(ctx context.Context, in *agentpb.SignalInstruction, opts ...grpc.CallOption) (*agentpb.InstanceAck, error) {
	c.signals = append(c.signals, in.Signal)
	c.lastID = in.Instance.Id
	if c.signalErr != nil {
		return nil, c.signalErr
	}
	return &agentpb.InstanceAck{}, nil
}

func ample() *schedpb.Resource {
	return &schedpb.Resource{
		Limit: &schedpb.ResourceSummary{Cpu: 2000, Memory: 4 << 30, Disk: 50 << 30},
		Usage: &schedpb.ResourceSummary{Cpu: 0, Memory: 0, Disk: 0},
	}
}

func TestUpdateStatusFailsWithoutOpenStream(t *testing.T) {
	n := New("n1", "10.0.0.1")
	if err := n.UpdateStatus(convert.StatusRunning, "", ample()); !errors.Is(err, ErrStreamNotFound) {
		t.Fatalf("got %v, want ErrStreamNotFound", err)
	}
}

func TestUpdateStatusForwardsFrameAndInstanceSet(t *testing.T) {
	n := New("n1", "10.0.0.1")
	up := newFakeUpstream()
	n.OpenNodeStatusStream(context.Background(), up)
	t.Cleanup(n.CloseNodeStatusStream)

	n.Instances.Upsert("i1", "i1")
	n.Instances.Upsert("i2", "i2")

	if err := n.UpdateStatus(convert.StatusRunning, "ok", ample()); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	<-up.notify

	if len(up.frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(up.frames))
	}
	got := up.frames[0]
	if got.Id != "n1" || got.Status != convert.StatusRunning || got.StatusDescription != "ok" {
		t.Fatalf("unexpected frame: %+v", got)
	}
	if got.Resource == nil {
		t.Fatalf("expected Resource to be attached for a Running frame")
	}
	if n.Resource != got.Resource {
		t.Fatalf("expected UpdateStatus to record the resource on the node")
	}

	ids := up.ids[0]
	if len(ids) != 2 || (ids[0] != "i1" && ids[1] != "i1") || (ids[0] != "i2" && ids[1] != "i2") {
		t.Fatalf("got instance ids %v, want {i1, i2}", ids)
	}
}

func TestUpdateStatusOmitsResourceWhenNotRunning(t *testing.T) {
	n := New("n1", "10.0.0.1")
	up := newFakeUpstream()
	n.OpenNodeStatusStream(context.Background(), up)
	t.Cleanup(n.CloseNodeStatusStream)

	if err := n.UpdateStatus(convert.StatusStarting, "booting", ample()); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	<-up.notify
	if up.frames[0].Resource != nil {
		t.Fatalf("expected no Resource on a non-Running frame")
	}
	if n.Resource != nil {
		t.Fatalf("expected node Resource to remain unset for a non-Running frame")
	}
}

func TestOpenNodeStatusStreamIsIdempotent(t *testing.T) {
	n := New("n1", "10.0.0.1")
	up := newFakeUpstream()
	n.OpenNodeStatusStream(context.Background(), up)
	first := n.upstream
	n.OpenNodeStatusStream(context.Background(), up)
	if n.upstream != first {
		t.Fatalf("expected a second OpenNodeStatusStream call to be a no-op")
	}
	n.CloseNodeStatusStream()
}

func TestCloseNodeStatusStreamStopsForwarding(t *testing.T) {
	n := New("n1", "10.0.0.1")
	n.OpenNodeStatusStream(context.Background(), newFakeUpstream())
	n.CloseNodeStatusStream()

	if err := n.UpdateStatus(convert.StatusRunning, "", ample()); !errors.Is(err, ErrStreamNotFound) {
		t.Fatalf("got %v, want ErrStreamNotFound after close", err)
	}
}

func TestCreateInstanceErrorsWithoutClient(t *testing.T) {
	n := New("n1", "10.0.0.1")
	_, err := n.CreateInstance(context.Background(), &schedpb.Instance{Id: "i1"})
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("got %v, want ErrClientNotFound", err)
	}
}

func TestCreateInstanceForwardsToAgentClient(t *testing.T) {
	client := &fakeAgentClient{stream: newFakeCreateStream()}
	n := NewWithClient("n1", "10.0.0.1", client)
	t.Cleanup(func() { close(client.stream.frames) })

	inst := &schedpb.Instance{Id: "i1", Name: "web"}
	stream, err := n.CreateInstance(context.Background(), inst)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	if stream != client.stream {
		t.Fatalf("expected the agent client's stream to be returned unchanged")
	}
}

func TestCreateInstanceWrapsAgentError(t *testing.T) {
	client := &fakeAgentClient{createErr: errors.New("boom")}
	n := NewWithClient("n1", "10.0.0.1", client)

	_, err := n.CreateInstance(context.Background(), &schedpb.Instance{Id: "i1"})
	var f *Failure
	if !errors.As(err, &f) || f.Kind != FailureTonicStatus {
		t.Fatalf("got %v, want a FailureTonicStatus", err)
	}
}

func TestStopAndKillInstanceSendExpectedSignal(t *testing.T) {
	client := &fakeAgentClient{}
	n := NewWithClient("n1", "10.0.0.1", client)

	if err := n.StopInstance(context.Background(), "i1"); err != nil {
		t.Fatalf("StopInstance: %v", err)
	}
	if err := n.KillInstance(context.Background(), "i1"); err != nil {
		t.Fatalf("KillInstance: %v", err)
	}

	if len(client.signals) != 2 || client.signals[0] != agentpb.Signal_STOP || client.signals[1] != agentpb.Signal_KILL {
		t.Fatalf("got signals %v, want [STOP, KILL]", client.signals)
	}
	if client.lastID != "i1" {
		t.Fatalf("got instance id %q, want i1", client.lastID)
	}
}

func TestSignalErrorsWithoutClient(t *testing.T) {
	n := New("n1", "10.0.0.1")
	if err := n.StopInstance(context.Background(), "i1"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("got %v, want ErrClientNotFound", err)
	}
}
