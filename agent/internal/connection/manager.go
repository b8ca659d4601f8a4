// Package connection manages the persistent gRPC connection between the
// Node Agent and the Scheduler. It handles:
//   - Registration (presenting a certificate, storing the returned node ID and subnet)
//   - A periodic NodeStatus report over the Status client-streaming RPC
//   - Graceful Unregister on shutdown
//   - Automatic reconnection with exponential backoff + jitter on any failure
//
// Retargeted from the teacher's proto.AgentServiceClient (Register,
// Heartbeat, StreamJobs, StreamLogs, ReportJobStatus) to
// schedpb.NodeServiceClient (Register, Unregister, Status), but keeps the
// teacher's backoff/jitter loop and its agent-state.json persistence idiom
// verbatim in shape.
package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/fleetd-sh/fleetd/agent/internal/telemetry"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

const (
	backoffInitial = 1 * time.Second
	backoffMax     = 30 * time.Second
	backoffFactor  = 2.0
	// jitterFraction adds up to ±20% random jitter to each backoff interval
	// to prevent thundering herd when many nodes reconnect simultaneously.
	jitterFraction = 0.2

	// statusInterval is how often the agent reports a NodeStatus frame.
	statusInterval = 10 * time.Second
)

// Node status codes, matching the Scheduler's own widenNodeStatus scheme.
const (
	statusStarting = 1
	statusRunning  = 2
	statusStopping = 3
)

// nodeState is persisted to disk after a successful registration whenever
// the returned ID differs from the stored one, and records the ID and subnet
// the Scheduler last assigned. Register carries
// only the certificate, so the Scheduler assigns a fresh ID on every
// registration.
type nodeState struct {
	NodeID string `json:"node_id"`
	Subnet string `json:"subnet"`
}

func stateFilePath(stateDir string) string {
	return filepath.Join(stateDir, "node-state.json")
}

func loadState(stateDir string) (nodeState, error) {
	data, err := os.ReadFile(stateFilePath(stateDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nodeState{}, nil
		}
		return nodeState{}, fmt.Errorf("connection: failed to read state file: %w", err)
	}
	var s nodeState
	if err := json.Unmarshal(data, &s); err != nil {
		return nodeState{}, fmt.Errorf("connection: corrupted state file: %w", err)
	}
	return s, nil
}

// saveState writes node state to disk atomically via temp file + rename.
func saveState(stateDir string, s nodeState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("connection: failed to marshal state: %w", err)
	}
	if err := os.MkdirAll(stateDir, 0750); err != nil {
		return fmt.Errorf("connection: failed to create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(stateDir, "node-state.*.tmp")
	if err != nil {
		return fmt.Errorf("connection: failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("connection: failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("connection: failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, stateFilePath(stateDir)); err != nil {
		return fmt.Errorf("connection: failed to rename state file: %w", err)
	}
	ok = true
	return nil
}

// Config holds all parameters needed to connect to the Scheduler.
type Config struct {
	SchedulerAddr string
	Certificate   string
	StateDir      string
}

// Manager maintains the persistent gRPC connection to the Scheduler.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.RWMutex
	nodeID string
	subnet string
}

// New creates a Manager. Call Run to start the connection loop.
func New(cfg Config, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger.Named("connection")}
}

// NodeID returns the currently assigned node ID, or "" if not yet registered.
func (m *Manager) NodeID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodeID
}

// Subnet returns the subnet assigned at registration, or "" if not yet registered.
func (m *Manager) Subnet() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subnet
}

// Run starts the connection loop. It dials the Scheduler, registers, and
// begins the status report loop. On any error it reconnects with
// exponential backoff. Blocks until ctx is cancelled, at which point it
// unregisters before returning.
func (m *Manager) Run(ctx context.Context) {
	backoff := backoffInitial

	for {
		if ctx.Err() != nil {
			m.logger.Info("connection manager stopped")
			return
		}

		m.logger.Info("connecting to scheduler", zap.String("addr", m.cfg.SchedulerAddr))

		if err := m.connect(ctx); err != nil {
			m.logger.Warn("connection failed, retrying",
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(jitter(backoff)):
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = backoffInitial
	}
}

// connect establishes one gRPC session: dial -> register -> status loop ->
// unregister (if the session ended due to shutdown rather than an error).
func (m *Manager) connect(ctx context.Context) error {
	conn, err := grpc.NewClient(
		m.cfg.SchedulerAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	client := schedpb.NewNodeServiceClient(conn)

	nodeID, subnet, err := m.register(ctx, client)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	m.mu.Lock()
	m.nodeID = nodeID
	m.subnet = subnet
	m.mu.Unlock()

	m.logger.Info("registered with scheduler", zap.String("node_id", nodeID), zap.String("subnet", subnet))

	err = m.statusLoop(ctx, client, nodeID)
	if ctx.Err() != nil {
		m.unregister(nodeID)
		return nil
	}
	return err
}

func (m *Manager) register(ctx context.Context, client schedpb.NodeServiceClient) (string, string, error) {
	state, err := loadState(m.cfg.StateDir)
	if err != nil {
		m.logger.Warn("failed to load node state, will re-register", zap.Error(err))
	}

	resp, err := client.Register(ctx, &schedpb.NodeRegisterRequest{Certificate: m.cfg.Certificate})
	if err != nil {
		return "", "", fmt.Errorf("Register RPC failed: %w", err)
	}
	if resp.Code != 0 {
		return "", "", fmt.Errorf("scheduler rejected registration: %s", resp.Description)
	}

	if resp.Id != state.NodeID {
		if err := saveState(m.cfg.StateDir, nodeState{NodeID: resp.Id, Subnet: resp.Subnet}); err != nil {
			m.logger.Warn("failed to persist node state", zap.Error(err))
		}
	}

	return resp.Id, resp.Subnet, nil
}

// statusLoop sends periodic NodeStatus frames on the Status client-streaming
// RPC until ctx is cancelled or sending fails.
func (m *Manager) statusLoop(ctx context.Context, client schedpb.NodeServiceClient, nodeID string) error {
	stream, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("Status stream open failed: %w", err)
	}

	capacityUsage, err := telemetry.Capacity(ctx)
	if err != nil {
		m.logger.Warn("failed to read host capacity", zap.Error(err))
	}
	capacity := resourceSummary(capacityUsage)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	if err := sendStatus(stream, nodeID, statusStarting, "registered", capacity, ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = sendStatus(stream, nodeID, statusStopping, "shutting down", capacity, context.Background())
			_, _ = stream.CloseAndRecv()
			return nil
		case <-ticker.C:
			if err := sendStatus(stream, nodeID, statusRunning, "ok", capacity, ctx); err != nil {
				return fmt.Errorf("status send failed: %w", err)
			}
		}
	}
}

func sendStatus(stream schedpb.NodeService_StatusClient, nodeID string, status int32, description string, capacity *schedpb.ResourceSummary, ctx context.Context) error {
	usageSnapshot, _ := telemetry.Collect(ctx)

	return stream.Send(&schedpb.NodeStatus{
		Id:                nodeID,
		Status:            status,
		StatusDescription: description,
		Resource: &schedpb.Resource{
			Limit: capacity,
			Usage: resourceSummary(usageSnapshot),
		},
	})
}

func resourceSummary(u telemetry.Usage) *schedpb.ResourceSummary {
	return &schedpb.ResourceSummary{Cpu: u.CPU, Memory: u.Memory, Disk: u.Disk}
}

func (m *Manager) unregister(nodeID string) {
	conn, err := grpc.NewClient(m.cfg.SchedulerAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		m.logger.Warn("unregister: failed to dial scheduler", zap.Error(err))
		return
	}
	defer conn.Close()

	client := schedpb.NewNodeServiceClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Unregister(ctx, &schedpb.NodeUnregisterRequest{Id: nodeID}); err != nil {
		m.logger.Warn("unregister RPC failed", zap.String("node_id", nodeID), zap.Error(err))
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * backoffFactor)
	if next > backoffMax {
		return backoffMax
	}
	return next
}

func jitter(d time.Duration) time.Duration {
	delta := float64(d) * jitterFraction
	offset := (rand.Float64()*2 - 1) * delta
	return time.Duration(float64(d) + offset)
}
