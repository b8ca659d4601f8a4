// Package dialer implements the controller dialer (C9): on scheduler
// startup, repeatedly attempt to connect to the controller's NodeService at
// a fixed 5-second interval until one succeeds, then expose the resulting
// client-streaming handle as a registry.UpstreamSender for every
// RegisteredNode's status forwarder to share.
package dialer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fleetd-sh/fleetd/scheduler/internal/convert"
	controllerpb "github.com/fleetd-sh/fleetd/shared/proto/controller"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// retryInterval is fixed, not exponential: the distilled spec calls for
// liveness over efficiency here, unlike the agent's bounded backoff.
const retryInterval = 5 * time.Second

// Dialer holds the shared, possibly-nil upstream stream to the controller.
// Safe for concurrent use: Send may be called from many RegisteredNode
// forwarder goroutines while Run is still retrying a fresh connection after
// a crash.
type Dialer struct {
	addr   string
	logger *zap.Logger

	mu     sync.RWMutex
	conn   *grpc.ClientConn
	stream controllerpb.NodeService_UpdateNodeStatusClient
}

// New creates a Dialer targeting the controller at addr (host:port).
func New(addr string, logger *zap.Logger) *Dialer {
	return &Dialer{addr: addr, logger: logger.Named("dialer")}
}

// Run blocks, attempting to (re)connect at a fixed interval until ctx is
// cancelled. Call it in its own goroutine; orchestrator.SetUpstream is
// called once a connection is established, and again after every reconnect.
func (d *Dialer) Run(ctx context.Context, onConnect func()) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := d.connect(ctx); err != nil {
			d.logger.Warn("controller dial failed, retrying", zap.String("addr", d.addr), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryInterval):
			}
			continue
		}
		d.logger.Info("connected to controller", zap.String("addr", d.addr))
		if onConnect != nil {
			onConnect()
		}
		d.waitUntilBroken(ctx)
	}
}

func (d *Dialer) connect(ctx context.Context) error {
	conn, err := grpc.NewClient(d.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	client := controllerpb.NewNodeServiceClient(conn)
	stream, err := client.UpdateNodeStatus(ctx)
	if err != nil {
		conn.Close()
		return err
	}
	d.mu.Lock()
	d.conn = conn
	d.stream = stream
	d.mu.Unlock()
	return nil
}

// waitUntilBroken blocks until the current stream's underlying connection is
// no longer Ready, then clears it so the next Run iteration reconnects.
func (d *Dialer) waitUntilBroken(ctx context.Context) {
	d.mu.RLock()
	conn := d.conn
	d.mu.RUnlock()
	if conn == nil {
		return
	}
	for {
		state := conn.GetState()
		if !conn.WaitForStateChange(ctx, state) {
			return
		}
		s := conn.GetState()
		if s.String() == "SHUTDOWN" || s.String() == "TRANSIENT_FAILURE" {
			d.mu.Lock()
			d.stream = nil
			d.mu.Unlock()
			return
		}
	}
}

// Send implements registry.UpstreamSender: translate and forward one
// NodeStatus frame, widening it into the controller's distinct NodeState.
func (d *Dialer) Send(status *schedpb.NodeStatus, instanceIDs []string) error {
	d.mu.RLock()
	stream := d.stream
	d.mu.RUnlock()
	if stream == nil {
		return errNotConnected
	}
	return stream.Send(convert.ControllerNodeStatusFromScheduler(status, instanceIDs))
}

var errNotConnected = &notConnectedError{}

type notConnectedError struct{}

func (*notConnectedError) Error() string { return "dialer: not connected to controller" }
