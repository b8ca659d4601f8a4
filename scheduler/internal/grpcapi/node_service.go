// Package grpcapi implements the gRPC listeners (C8): translate each RPC
// into an Event, await the reply, and translate the reply into a gRPC
// response. Streaming methods hand back a multi-shot reply channel directly.
package grpcapi

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/scheduler/internal/orchestrator"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// NodeServer implements schedpb.NodeServiceServer by enqueueing events onto
// the orchestrator and awaiting replies.
type NodeServer struct {
	schedpb.UnimplementedNodeServiceServer
	events chan<- orchestrator.Event
	logger *zap.Logger
}

// NewNodeServer wires a NodeServer to the orchestrator's event queue.
func NewNodeServer(events chan<- orchestrator.Event, logger *zap.Logger) *NodeServer {
	return &NodeServer{events: events, logger: logger.Named("grpcapi.node")}
}

// Register enqueues a NodeRegister event and awaits the scheduler's decision.
func (s *NodeServer) Register(ctx context.Context, req *schedpb.NodeRegisterRequest) (*schedpb.NodeRegisterResponse, error) {
	peer := peerAddr(ctx)
	reply := make(chan orchestrator.NodeRegisterReply, 1)
	s.events <- orchestrator.NodeRegisterEvent{
		Certificate: req.Certificate,
		RemoteAddr:  peer,
		Reply:       reply,
	}
	r := <-reply
	return &schedpb.NodeRegisterResponse{Code: r.Code, Description: r.Description, Subnet: r.Subnet, Id: r.ID}, nil
}

// Unregister enqueues a NodeUnregister event and awaits completion.
func (s *NodeServer) Unregister(ctx context.Context, req *schedpb.NodeUnregisterRequest) (*schedpb.NodeUnregisterResponse, error) {
	reply := make(chan error, 1)
	s.events <- orchestrator.NodeUnregisterEvent{ID: req.Id, Reply: reply}
	if err := <-reply; err != nil {
		return &schedpb.NodeUnregisterResponse{Code: 1, Description: err.Error()}, nil
	}
	return &schedpb.NodeUnregisterResponse{Code: 0}, nil
}

// Status implements the client-streaming RPC: a per-call loop reads one
// frame, enqueues NodeStatus, and awaits a per-frame Ok from the event loop
// before reading the next. This is what provides backpressure and in-order
// application. A client stream error is reported as NodeStreamCrash carrying
// the first-seen node id.
func (s *NodeServer) Status(stream schedpb.NodeService_StatusServer) error {
	var firstID string
	for {
		frame, err := stream.Recv()
		if err == io.EOF {
			return stream.SendAndClose(&schedpb.NodeStatusAck{})
		}
		if err != nil {
			if firstID != "" {
				s.events <- orchestrator.NodeStreamCrashEvent{ID: firstID}
			}
			return err
		}
		if firstID == "" {
			firstID = frame.Id
		}

		reply := make(chan error, 1)
		s.events <- orchestrator.NodeStatusEvent{Frame: frame, Reply: reply}
		if err := <-reply; err != nil {
			s.logger.Warn("node status apply failed", zap.String("node_id", frame.Id), zap.Error(err))
		}
	}
}
