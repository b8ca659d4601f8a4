// Package nodeserver implements the gRPC server the Scheduler dials to
// deliver ControllerNodeStatus frames (the controller side of the
// Scheduler's dialer/C9), updating the node cache and firing alerts on
// failure transitions, grounded on the teacher's gRPC server pattern.
package nodeserver

import (
	"io"

	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/controller/internal/alerting"
	"github.com/fleetd-sh/fleetd/controller/internal/hub"
	"github.com/fleetd-sh/fleetd/controller/internal/nodecache"
	controllerpb "github.com/fleetd-sh/fleetd/shared/proto/controller"
)

// Server implements controllerpb.NodeServiceServer.
type Server struct {
	controllerpb.UnimplementedNodeServiceServer

	cache  *nodecache.Cache
	hub    *hub.Hub
	alerts *alerting.Notifier
	logger *zap.Logger
}

// New wires a Server to the node cache, hub, and alert notifier.
func New(cache *nodecache.Cache, h *hub.Hub, alerts *alerting.Notifier, logger *zap.Logger) *Server {
	return &Server{cache: cache, hub: h, alerts: alerts, logger: logger.Named("nodeserver")}
}

// UpdateNodeStatus reads ControllerNodeStatus frames until the Scheduler
// closes the stream, applying each to the node cache.
func (s *Server) UpdateNodeStatus(stream controllerpb.NodeService_UpdateNodeStatusServer) error {
	for {
		frame, err := stream.Recv()
		if err == io.EOF {
			return stream.SendAndClose(&controllerpb.UpdateAck{})
		}
		if err != nil {
			return err
		}
		s.apply(frame)
	}
}

func (s *Server) apply(frame *controllerpb.ControllerNodeStatus) {
	previous := s.cache.Update(&nodecache.Snapshot{
		ID:                frame.Id,
		State:             frame.State,
		StatusDescription: frame.StatusDescription,
		Resource:          frame.Resource,
		InstanceIDs:       frame.InstanceIds,
	})

	s.hub.Publish("node:"+frame.Id, hub.Message{
		Type:  hub.MsgNodeStatus,
		Topic: "node:" + frame.Id,
		Payload: map[string]any{
			"id":                  frame.Id,
			"state":               frame.State.String(),
			"status_description":  frame.StatusDescription,
			"instance_ids":        frame.InstanceIds,
		},
	})

	wasFailing := previous != nil && previous.State == controllerpb.NodeState_FAILING
	if frame.State == controllerpb.NodeState_FAILING && !wasFailing {
		s.alerts.Fire(alerting.Event{
			Kind:        alerting.KindNodeFailing,
			SubjectID:   frame.Id,
			Description: frame.StatusDescription,
		})
	}
	if frame.State == controllerpb.NodeState_UNREGISTERED && wasFailing {
		s.alerts.Fire(alerting.Event{
			Kind:        alerting.KindNodeFailed,
			SubjectID:   frame.Id,
			Description: "node unregistered after failing",
		})
	}
}
