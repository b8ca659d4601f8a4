// Package runtime implements the Node Agent's container lifecycle driver
// (C16): it is the gRPC server the Scheduler dials to create, signal, and
// poll instances, backed by the local Docker daemon. Grounded on the
// teacher's Docker SDK client wrapper (ping + typed errors) and its
// one-goroutine-per-unit-of-work executor shape, adapted here to one
// goroutine per instance rather than one shared job queue — container
// operations on different instances never contend with each other.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	dockerimage "github.com/docker/docker/api/types/image"
	dockernetwork "github.com/docker/docker/api/types/network"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"go.uber.org/zap"

	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
)

// Status codes, mirroring the scheduler's own int32 status widening scheme
// (internal/convert.Status*) so frames round-trip without translation.
const (
	StatusScheduling int32 = 0
	StatusStarting   int32 = 1
	StatusRunning    int32 = 2
	StatusStopping   int32 = 3
	StatusTerminated int32 = 4
	StatusFailed     int32 = 6
)

// pollInterval is how often a running container's state is checked to
// detect it exiting on its own, without the Scheduler having sent a Signal.
const pollInterval = 2 * time.Second

// Networker is the subset of the network package's API the runtime driver
// calls into around container create/destroy. Defined here so runtime does
// not import network directly, keeping the dependency direction one-way.
type Networker interface {
	SetupInstance(ctx context.Context, containerID string, ports []*agentpb.Port) error
	CleanInstance(ctx context.Context, containerID string) error
}

// Driver implements agentpb.InstanceServiceServer against the local Docker
// daemon. Each tracked instance has its own goroutine driving its container
// through creation, running-state polling, and signal handling.
type Driver struct {
	agentpb.UnimplementedInstanceServiceServer

	docker *dockerclient.Client
	net    Networker
	logger *zap.Logger

	mu        sync.Mutex
	instances map[string]*trackedInstance // keyed by instance id
}

type trackedInstance struct {
	containerID string
	cancel      context.CancelFunc
}

// New creates a Driver using the Docker SDK default connection (respects
// DOCKER_HOST), or the socket at host if non-empty.
func New(host string, net Networker, logger *zap.Logger) (*Driver, error) {
	opts := []dockerclient.Opt{dockerclient.FromEnv, dockerclient.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, dockerclient.WithHost(host))
	}
	dc, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: failed to create docker client: %w", err)
	}
	return &Driver{
		docker:    dc,
		net:       net,
		logger:    logger.Named("runtime"),
		instances: make(map[string]*trackedInstance),
	}, nil
}

// Ping verifies the Docker daemon is reachable, for use at agent startup.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.docker.Ping(ctx); err != nil {
		return fmt.Errorf("runtime: docker daemon unreachable: %w", err)
	}
	return nil
}

// Create pulls the image if needed, creates and starts the container, wires
// it into the node's bridge network, and streams InstanceStatus frames
// until the container exits, is killed, or the Scheduler disconnects.
func (d *Driver) Create(inst *agentpb.Instance, stream agentpb.InstanceService_CreateServer) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	send := func(status int32, description string) error {
		return stream.Send(&agentpb.InstanceStatus{Id: inst.Id, Status: status, StatusDescription: description})
	}

	if err := send(StatusScheduling, "pulling image"); err != nil {
		return err
	}
	if err := d.pullIfMissing(ctx, inst.Uri); err != nil {
		_ = send(StatusFailed, err.Error())
		return nil
	}

	containerID, err := d.createContainer(ctx, inst)
	if err != nil {
		_ = send(StatusFailed, err.Error())
		return nil
	}

	d.track(inst.Id, containerID, cancel)
	defer d.untrack(inst.Id)

	if err := send(StatusStarting, "starting container"); err != nil {
		return err
	}

	if err := d.docker.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		_ = send(StatusFailed, fmt.Sprintf("failed to start container: %s", err))
		return nil
	}

	if err := d.net.SetupInstance(ctx, containerID, inst.Ports); err != nil {
		d.logger.Warn("instance network setup failed", zap.String("instance_id", inst.Id), zap.Error(err))
	}

	if err := send(StatusRunning, "container running"); err != nil {
		return err
	}

	return d.pollUntilExit(ctx, inst.Id, containerID, send)
}

// pollUntilExit polls container state until it stops, the context is
// cancelled (Signal or stream teardown), or the Docker daemon becomes
// unreachable, sending a status frame on every observed transition.
func (d *Driver) pollUntilExit(ctx context.Context, instanceID, containerID string, send func(status int32, description string) error) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			inspect, err := d.docker.ContainerInspect(ctx, containerID)
			if err != nil {
				if errdefs.IsNotFound(err) {
					return send(StatusTerminated, "container no longer exists")
				}
				d.logger.Warn("failed to inspect container", zap.String("instance_id", instanceID), zap.Error(err))
				continue
			}
			if !inspect.State.Running {
				if inspect.State.ExitCode == 0 {
					return send(StatusTerminated, "container exited")
				}
				return send(StatusFailed, fmt.Sprintf("container exited with code %d", inspect.State.ExitCode))
			}
		}
	}
}

// Signal stops or forcibly kills a tracked instance's container.
func (d *Driver) Signal(ctx context.Context, in *agentpb.SignalInstruction) (*agentpb.InstanceAck, error) {
	d.mu.Lock()
	tracked, ok := d.instances[in.Instance.Id]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("runtime: unknown instance %s", in.Instance.Id)
	}

	switch in.Signal {
	case agentpb.Signal_STOP:
		timeout := 10
		if err := d.docker.ContainerStop(ctx, tracked.containerID, container.StopOptions{Timeout: &timeout}); err != nil {
			return nil, fmt.Errorf("runtime: stop %s: %w", in.Instance.Id, err)
		}
	case agentpb.Signal_KILL:
		if err := d.docker.ContainerRemove(ctx, tracked.containerID, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("runtime: kill %s: %w", in.Instance.Id, err)
		}
		tracked.cancel()
	}

	if err := d.net.CleanInstance(ctx, tracked.containerID); err != nil {
		d.logger.Warn("instance network cleanup failed", zap.String("instance_id", in.Instance.Id), zap.Error(err))
	}

	return &agentpb.InstanceAck{}, nil
}

func (d *Driver) track(id, containerID string, cancel context.CancelFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.instances[id] = &trackedInstance{containerID: containerID, cancel: cancel}
}

func (d *Driver) untrack(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.instances, id)
}

func (d *Driver) pullIfMissing(ctx context.Context, ref string) error {
	_, _, err := d.docker.ImageInspectWithRaw(ctx, ref)
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}

	rc, err := d.docker.ImagePull(ctx, ref, dockerimage.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read image pull progress for %s: %w", ref, err)
	}
	return nil
}

func (d *Driver) createContainer(ctx context.Context, inst *agentpb.Instance) (string, error) {
	exposed, bindings := portConfig(inst.Ports)

	var nanoCPUs, memory int64
	if inst.Resource != nil && inst.Resource.Limit != nil {
		nanoCPUs = int64(inst.Resource.Limit.Cpu) * 1_000_000
		memory = int64(inst.Resource.Limit.Memory)
	}

	hostCfg := &container.HostConfig{
		PortBindings: bindings,
		Resources: container.Resources{
			NanoCPUs: nanoCPUs,
			Memory:   memory,
		},
	}

	resp, err := d.docker.ContainerCreate(ctx,
		&container.Config{
			Image:        inst.Uri,
			Env:          inst.Environment,
			ExposedPorts: exposed,
			Labels:       map[string]string{"fleetd.instance_id": inst.Id, "fleetd.instance_name": inst.Name},
		},
		hostCfg,
		&dockernetwork.NetworkingConfig{},
		nil,
		"fleetd-"+inst.Id,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	return resp.ID, nil
}

// Close releases the underlying Docker client resources.
func (d *Driver) Close() error {
	return d.docker.Close()
}

func portConfig(ports []*agentpb.Port) (nat.PortSet, nat.PortMap) {
	exposed := make(nat.PortSet, len(ports))
	bindings := make(nat.PortMap, len(ports))
	for _, p := range ports {
		containerPort, err := nat.NewPort("tcp", fmt.Sprintf("%d", p.Destination))
		if err != nil {
			continue
		}
		exposed[containerPort] = struct{}{}
		bindings[containerPort] = []nat.PortBinding{{HostPort: fmt.Sprintf("%d", p.Source)}}
	}
	return exposed, bindings
}
