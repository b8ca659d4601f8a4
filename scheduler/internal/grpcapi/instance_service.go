package grpcapi

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fleetd-sh/fleetd/scheduler/internal/orchestrator"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// InstanceServer implements schedpb.InstanceServiceServer.
type InstanceServer struct {
	schedpb.UnimplementedInstanceServiceServer
	events chan<- orchestrator.Event
}

// NewInstanceServer wires an InstanceServer to the orchestrator's event queue.
func NewInstanceServer(events chan<- orchestrator.Event) *InstanceServer {
	return &InstanceServer{events: events}
}

// Create enqueues an InstanceCreate event and streams every InstanceStatus
// frame the instance produces back to the caller until the reply channel is
// closed by the orchestrator's forwarder.
func (s *InstanceServer) Create(req *schedpb.Instance, stream schedpb.InstanceService_CreateServer) error {
	reply := make(chan *schedpb.InstanceStatus, 1)
	s.events <- orchestrator.InstanceCreateEvent{Instance: req, Reply: reply}
	for frame := range reply {
		if err := stream.Send(frame); err != nil {
			return err
		}
	}
	return nil
}

// Start is never implemented: Create is create-and-start, per design notes.
func (s *InstanceServer) Start(ctx context.Context, req *schedpb.InstanceIdentifier) (*schedpb.InstanceAck, error) {
	return nil, status.Error(codes.Unimplemented, "Start is not implemented; Create both schedules and starts an instance")
}

// Stop enqueues an InstanceStop event and awaits completion.
func (s *InstanceServer) Stop(ctx context.Context, req *schedpb.InstanceIdentifier) (*schedpb.InstanceAck, error) {
	reply := make(chan error, 1)
	s.events <- orchestrator.InstanceStopEvent{ID: req.Id, Reply: reply}
	if err := <-reply; err != nil {
		return nil, toStatusError(err)
	}
	return &schedpb.InstanceAck{}, nil
}

// Destroy enqueues an InstanceDestroy event and awaits completion.
func (s *InstanceServer) Destroy(ctx context.Context, req *schedpb.InstanceIdentifier) (*schedpb.InstanceAck, error) {
	reply := make(chan error, 1)
	s.events <- orchestrator.InstanceDestroyEvent{ID: req.Id, Reply: reply}
	if err := <-reply; err != nil {
		return nil, toStatusError(err)
	}
	return &schedpb.InstanceAck{}, nil
}

// toStatusError maps orchestrator errors to gRPC status codes, giving
// ErrInstanceNotFound its own NotFound code instead of the generic Internal.
func toStatusError(err error) error {
	if errors.Is(err, orchestrator.ErrInstanceNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
