package grpcapi

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fleetd-sh/fleetd/scheduler/internal/orchestrator"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

// fakeCreateServer is a canned schedpb.InstanceService_CreateServer: Send
// just records every frame handed to it.
type fakeCreateServer struct {
	grpc.ServerStream
	frames []*schedpb.InstanceStatus
}

func (s *fakeCreateServer) Send(f *schedpb.InstanceStatus) error {
	s.frames = append(s.frames, f)
	return nil
}

func TestCreateStreamsFramesUntilReplyCloses(t *testing.T) {
	events := make(chan orchestrator.Event)
	srv := NewInstanceServer(events)

	go func() {
		ev := (<-events).(orchestrator.InstanceCreateEvent)
		ev.Reply <- &schedpb.InstanceStatus{Id: "i1", Status: 0}
		ev.Reply <- &schedpb.InstanceStatus{Id: "i1", Status: 1}
		close(ev.Reply)
	}()

	stream := &fakeCreateServer{}
	if err := srv.Create(&schedpb.Instance{Id: "i1"}, stream); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(stream.frames) != 2 {
		t.Fatalf("got %d frames, want 2 (Create should return once reply closes)", len(stream.frames))
	}
}

func TestToStatusErrorMapping(t *testing.T) {
	if got := status.Code(toStatusError(orchestrator.ErrInstanceNotFound)); got != codes.NotFound {
		t.Fatalf("got %v, want NotFound", got)
	}
	if got := status.Code(toStatusError(errors.New("boom"))); got != codes.Internal {
		t.Fatalf("got %v, want Internal", got)
	}
}

func TestStopReturnsNotFoundStatus(t *testing.T) {
	events := make(chan orchestrator.Event, 1)
	srv := NewInstanceServer(events)

	go func() {
		ev := (<-events).(orchestrator.InstanceStopEvent)
		ev.Reply <- orchestrator.ErrInstanceNotFound
	}()

	_, err := srv.Stop(context.Background(), &schedpb.InstanceIdentifier{Id: "missing"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("got %v, want codes.NotFound", err)
	}
}

func TestDestroyReturnsNotFoundStatus(t *testing.T) {
	events := make(chan orchestrator.Event, 1)
	srv := NewInstanceServer(events)

	go func() {
		ev := (<-events).(orchestrator.InstanceDestroyEvent)
		ev.Reply <- orchestrator.ErrInstanceNotFound
	}()

	_, err := srv.Destroy(context.Background(), &schedpb.InstanceIdentifier{Id: "missing"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("got %v, want codes.NotFound", err)
	}
}

func TestStopWrapsOtherErrorsAsInternal(t *testing.T) {
	events := make(chan orchestrator.Event, 1)
	srv := NewInstanceServer(events)

	go func() {
		ev := (<-events).(orchestrator.InstanceStopEvent)
		ev.Reply <- errors.New("agent unreachable")
	}()

	_, err := srv.Stop(context.Background(), &schedpb.InstanceIdentifier{Id: "i1"})
	if status.Code(err) != codes.Internal {
		t.Fatalf("got %v, want codes.Internal", err)
	}
}
