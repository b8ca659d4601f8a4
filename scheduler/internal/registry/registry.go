// Package registry implements the node registry (C3) and the RegisteredNode
// proxy (C6): the orchestrator's sole view of which nodes exist, their
// current status, and the gRPC clients used to reach them and the controller.
package registry

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fleetd-sh/fleetd/scheduler/internal/convert"
	"github.com/fleetd-sh/fleetd/scheduler/internal/store"
	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// Failure kinds classify why a RegisteredNode operation failed, mirroring the
// distinct error categories a gRPC client call against the agent can surface.
type FailureKind int

const (
	FailureTonicTransport FailureKind = iota
	FailureTonicStatus
	FailureGrpcClientNotFound
	FailureGrpcStreamNotFound
	FailureChannelSender
)

func (k FailureKind) String() string {
	switch k {
	case FailureTonicTransport:
		return "transport"
	case FailureTonicStatus:
		return "status"
	case FailureGrpcClientNotFound:
		return "client_not_found"
	case FailureGrpcStreamNotFound:
		return "stream_not_found"
	case FailureChannelSender:
		return "channel_sender"
	default:
		return "unknown"
	}
}

// Failure wraps an underlying error with its classification.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string { return fmt.Sprintf("%s: %v", f.Kind, f.Err) }
func (f *Failure) Unwrap() error { return f.Err }

func transportFailure(err error) error { return &Failure{Kind: FailureTonicTransport, Err: err} }
func statusFailure(err error) error    { return &Failure{Kind: FailureTonicStatus, Err: err} }

// ErrClientNotFound is returned when an operation needs the downstream agent
// client but Connect was never called (or failed) for this node.
var ErrClientNotFound = &Failure{Kind: FailureGrpcClientNotFound, Err: errors.New("no agent client for node")}

// ErrStreamNotFound is returned when an operation needs the upstream status
// channel but OpenNodeStatusStream was never called for this node.
var ErrStreamNotFound = &Failure{Kind: FailureGrpcStreamNotFound, Err: errors.New("no upstream status stream for node")}

// ErrChannelClosed is returned when a send onto the upstream channel fails
// because the channel (or its consumer) has gone away.
var ErrChannelClosed = &Failure{Kind: FailureChannelSender, Err: errors.New("upstream channel closed")}

// UpstreamSender is the narrow interface the orchestrator's controller dialer
// provides: a client-streaming handle to UpdateNodeStatus.
type UpstreamSender interface {
	Send(status *schedpb.NodeStatus, instanceIDs []string) error
}

// RegisteredNode owns a Node plus its remote address, an optional upstream
// sender to the controller, an optional downstream agent client, and the
// store of instances placed here.
type RegisteredNode struct {
	ID       string
	Status   int32
	Resource *schedpb.Resource
	RemoteIP string

	agentConn   *grpc.ClientConn
	agentClient agentpb.InstanceServiceClient

	upstream chan upstreamFrame
	stopCh   chan struct{}

	Instances *store.Store[string] // instance id -> instance id (set semantics)
}

type upstreamFrame struct {
	status      *schedpb.NodeStatus
	instanceIDs []string
}

// New creates a RegisteredNode in the Starting state, not yet connected.
func New(id, remoteIP string) *RegisteredNode {
	return &RegisteredNode{
		ID:        id,
		Status:    convert.StatusStarting,
		RemoteIP:  remoteIP,
		Instances: store.New[string](),
	}
}

// NewWithClient builds a RegisteredNode already wired to client, bypassing
// Connect and its network dial. Used by the orchestrator's tests to drive an
// instance through its agent-facing lifecycle against a fake agent client.
func NewWithClient(id, remoteIP string, client agentpb.InstanceServiceClient) *RegisteredNode {
	n := New(id, remoteIP)
	n.agentClient = client
	return n
}

// agentPort is the fixed port every Node Agent's InstanceService listens on.
const agentPort = "7777"

// Connect dials the agent's InstanceService at <node-ip>:<fixed agent port>.
func (n *RegisteredNode) Connect(ctx context.Context) error {
	conn, err := grpc.NewClient(
		n.RemoteIP+":"+agentPort,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return transportFailure(err)
	}
	n.agentConn = conn
	n.agentClient = agentpb.NewInstanceServiceClient(conn)
	return nil
}

// OpenNodeStatusStream wires this node's upstream channel to a background
// sender that forwards frames to the controller via upstream. Idempotent:
// calling it again while a stream is already open is a no-op.
func (n *RegisteredNode) OpenNodeStatusStream(ctx context.Context, upstream UpstreamSender) {
	if n.upstream != nil {
		return
	}
	n.upstream = make(chan upstreamFrame, 1)
	n.stopCh = make(chan struct{})
	ch := n.upstream
	stop := n.stopCh
	go func() {
		for {
			select {
			case <-stop:
				return
			case f := <-ch:
				if err := upstream.Send(f.status, f.instanceIDs); err != nil {
					return
				}
			}
		}
	}()
}

// CloseNodeStatusStream stops the background forwarder, if one is running.
func (n *RegisteredNode) CloseNodeStatusStream() {
	if n.stopCh != nil {
		close(n.stopCh)
		n.stopCh = nil
		n.upstream = nil
	}
}

// UpdateStatus assembles a controller-bound NodeStatus frame, including the
// current instance-id set, and pushes it onto the upstream channel. Resource
// is included only when status is Running (code 2), to avoid publishing
// stale telemetry for a node that is not actually up.
func (n *RegisteredNode) UpdateStatus(status int32, description string, resource *schedpb.Resource) error {
	n.Status = status
	frame := &schedpb.NodeStatus{
		Id:                n.ID,
		Status:            status,
		StatusDescription: description,
	}
	if status == convert.StatusRunning {
		frame.Resource = resource
		n.Resource = resource
	}
	if n.upstream == nil {
		return ErrStreamNotFound
	}
	select {
	case n.upstream <- upstreamFrame{status: frame, instanceIDs: n.Instances.Enumerate()}:
		return nil
	default:
		return ErrChannelClosed
	}
}

// CreateInstance calls the agent's Create RPC, returning the InstanceStatus
// stream for the orchestrator to forward.
func (n *RegisteredNode) CreateInstance(ctx context.Context, inst *schedpb.Instance) (agentpb.InstanceService_CreateClient, error) {
	if n.agentClient == nil {
		return nil, ErrClientNotFound
	}
	stream, err := n.agentClient.Create(ctx, convert.InstanceToAgent(inst))
	if err != nil {
		return nil, statusFailure(err)
	}
	return stream, nil
}

// StopInstance sends a Signal(Stop) instruction for the given instance id.
func (n *RegisteredNode) StopInstance(ctx context.Context, id string) error {
	return n.signal(ctx, id, agentpb.Signal_STOP)
}

// KillInstance sends a Signal(Kill) instruction for the given instance id.
func (n *RegisteredNode) KillInstance(ctx context.Context, id string) error {
	return n.signal(ctx, id, agentpb.Signal_KILL)
}

func (n *RegisteredNode) signal(ctx context.Context, id string, sig agentpb.Signal) error {
	if n.agentClient == nil {
		return ErrClientNotFound
	}
	_, err := n.agentClient.Signal(ctx, &agentpb.SignalInstruction{
		Signal:   sig,
		Instance: convert.FakeAgentInstance(id),
	})
	if err != nil {
		return statusFailure(err)
	}
	return nil
}

// Close tears down the agent connection and upstream forwarder.
func (n *RegisteredNode) Close() {
	n.CloseNodeStatusStream()
	if n.agentConn != nil {
		n.agentConn.Close()
	}
}

// Registry is the typed store of RegisteredNode, keyed by node id.
type Registry = store.Store[*RegisteredNode]

// New registry constructor, re-exported for readability at call sites.
func NewRegistry() *Registry {
	return store.New[*RegisteredNode]()
}
