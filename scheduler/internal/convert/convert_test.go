package convert

import (
	"reflect"
	"testing"

	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
	controllerpb "github.com/fleetd-sh/fleetd/shared/proto/controller"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
)

func sampleInstance() *schedpb.Instance {
	return &schedpb.Instance{
		Id:          "inst-1",
		Name:        "web",
		Type:        schedpb.InstanceType_CONTAINER,
		Status:      StatusRunning,
		Uri:         "registry/web:latest",
		Environment: []string{"FOO=bar"},
		Resource: &schedpb.Resource{
			Limit: &schedpb.ResourceSummary{Cpu: 1000, Memory: 512 << 20, Disk: 1 << 30},
			Usage: &schedpb.ResourceSummary{Cpu: 100, Memory: 64 << 20, Disk: 1 << 20},
		},
		Ports: []*schedpb.Port{{Source: 8080, Destination: 80}},
		Ip:    "10.0.0.5",
	}
}

func TestInstanceRoundTripThroughAgent(t *testing.T) {
	want := sampleInstance()
	got := InstanceFromAgent(InstanceToAgent(want))
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestResourceRoundTrip(t *testing.T) {
	want := &schedpb.Resource{
		Limit: &schedpb.ResourceSummary{Cpu: 2000, Memory: 1 << 30, Disk: 2 << 30},
		Usage: &schedpb.ResourceSummary{Cpu: 500, Memory: 1 << 20, Disk: 1 << 20},
	}
	got := ResourceFromAgent(ResourceToAgent(want))
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestPortRoundTrip(t *testing.T) {
	want := &schedpb.Port{Source: 53, Destination: 5353}
	got := PortFromAgent(PortToAgent(want))
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch: want %+v got %+v", want, got)
	}
}

func TestInstanceStatusFromAgentWidensUnknownToFailed(t *testing.T) {
	s := InstanceStatusFromAgent(&agentpb.InstanceStatus{Id: "i1", Status: 99})
	if s.Status != StatusFailed {
		t.Fatalf("got status %d, want %d (Failed)", s.Status, StatusFailed)
	}
}

func TestNodeStatusToStateWidensUnknownToFailing(t *testing.T) {
	got := nodeStatusToState(99)
	if got != controllerpb.NodeState_FAILING {
		t.Fatalf("got %v, want FAILING", got)
	}
}

func TestControllerNodeStatusFromScheduler(t *testing.T) {
	s := &schedpb.NodeStatus{
		Id:                "node-1",
		Status:            StatusRunning,
		StatusDescription: "ok",
		Resource: &schedpb.Resource{
			Limit: &schedpb.ResourceSummary{Cpu: 4000, Memory: 8 << 30, Disk: 100 << 30},
			Usage: &schedpb.ResourceSummary{Cpu: 200, Memory: 1 << 30, Disk: 2 << 30},
		},
	}
	got := ControllerNodeStatusFromScheduler(s, []string{"i1", "i2"})
	if got.Id != "node-1" || got.State != controllerpb.NodeState_REGISTERED {
		t.Fatalf("unexpected conversion: %+v", got)
	}
	if len(got.InstanceIds) != 2 {
		t.Fatalf("expected 2 instance ids, got %d", len(got.InstanceIds))
	}
}

func TestFakeAgentInstanceCarriesOnlyID(t *testing.T) {
	fake := FakeAgentInstance("inst-42")
	if fake.Id != "inst-42" {
		t.Fatalf("got id %q, want inst-42", fake.Id)
	}
	if fake.Name != "" || fake.Uri != "" || fake.Resource != nil {
		t.Fatalf("expected fake instance to carry only an id, got %+v", fake)
	}
}
