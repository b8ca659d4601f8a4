// Package schedclient is the Controller's gRPC client to the Scheduler's
// InstanceService: it issues Create/Stop/Destroy calls and, for Create,
// owns the background goroutine that drains the resulting status stream,
// feeding the instance index, the live status hub, and alerting.
package schedclient

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fleetd-sh/fleetd/controller/internal/alerting"
	"github.com/fleetd-sh/fleetd/controller/internal/hub"
	"github.com/fleetd-sh/fleetd/controller/internal/instanceindex"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

const (
	statusTerminated int32 = 4
	statusFailed     int32 = 6
)

// Client wraps a connection to the Scheduler's InstanceService.
type Client struct {
	conn   *grpc.ClientConn
	rpc    schedpb.InstanceServiceClient
	index  *instanceindex.Index
	hub    *hub.Hub
	alerts *alerting.Notifier
	logger *zap.Logger
}

// Dial connects to the Scheduler at addr.
func Dial(addr string, index *instanceindex.Index, h *hub.Hub, alerts *alerting.Notifier, logger *zap.Logger) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("schedclient: dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		rpc:    schedpb.NewInstanceServiceClient(conn),
		index:  index,
		hub:    h,
		alerts: alerts,
		logger: logger.Named("schedclient"),
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Create asks the Scheduler to create and start inst under namespace/name
// (workload is the owning Workload's name, or "" for a one-off instance),
// tracks the resulting scheduler-assigned id in the instance index, and
// spawns a goroutine that forwards every status frame until the stream ends.
// It returns the first status frame synchronously so HTTP handlers have an
// immediate response body.
func (c *Client) Create(ctx context.Context, namespace, name, workload string, inst *schedpb.Instance) (*schedpb.InstanceStatus, error) {
	stream, err := c.rpc.Create(ctx, inst)
	if err != nil {
		return nil, fmt.Errorf("schedclient: create: %w", err)
	}

	first, err := stream.Recv()
	if err != nil {
		return nil, fmt.Errorf("schedclient: create: no initial status: %w", err)
	}

	c.index.Track(first.Id, namespace, name, workload)
	c.applyStatus(first)

	go c.forward(stream, first.Id)

	return first, nil
}

// Stop asks the Scheduler to stop instance id.
func (c *Client) Stop(ctx context.Context, id string) error {
	_, err := c.rpc.Stop(ctx, &schedpb.InstanceIdentifier{Id: id})
	if err != nil {
		return fmt.Errorf("schedclient: stop %s: %w", id, err)
	}
	return nil
}

// Destroy asks the Scheduler to kill instance id.
func (c *Client) Destroy(ctx context.Context, id string) error {
	_, err := c.rpc.Destroy(ctx, &schedpb.InstanceIdentifier{Id: id})
	if err != nil {
		return fmt.Errorf("schedclient: destroy %s: %w", id, err)
	}
	return nil
}

// forward drains stream until it ends, applying each frame to the instance
// index and hub. It is the sole reader of stream after Create returns.
func (c *Client) forward(stream schedpb.InstanceService_CreateClient, id string) {
	for {
		frame, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			c.logger.Warn("instance status stream closed with error", zap.String("instance_id", id), zap.Error(err))
			return
		}
		c.applyStatus(frame)
	}
}

func (c *Client) applyStatus(frame *schedpb.InstanceStatus) {
	record, prevStatus := c.index.UpdateStatus(frame.Id, frame.Status, frame.StatusDescription)

	c.hub.Publish("instance:"+frame.Id, hub.Message{
		Type:  hub.MsgInstanceStatus,
		Topic: "instance:" + frame.Id,
		Payload: map[string]any{
			"id":                 frame.Id,
			"status":             frame.Status,
			"status_description": frame.StatusDescription,
			"namespace":          record.Namespace,
			"name":               record.Name,
		},
	})

	if frame.Status == statusFailed && prevStatus != statusFailed {
		c.alerts.Fire(alerting.Event{
			Kind:        alerting.KindInstanceFailed,
			SubjectID:   frame.Id,
			Description: frame.StatusDescription,
		})
	}
}
