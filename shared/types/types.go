// Package types defines domain types, not tied to any one proto wire
// vocabulary, shared by the Controller and its fleetctl CLI.
package types

import "time"

// ─── Node ────────────────────────────────────────────────────────────────────

// NodeStatus represents the lifecycle state of a node as tracked by the Scheduler.
type NodeStatus string

const (
	NodeStatusStarting   NodeStatus = "starting"
	NodeStatusRunning    NodeStatus = "running"
	NodeStatusStopping   NodeStatus = "stopping"
	NodeStatusStopped    NodeStatus = "stopped"
	NodeStatusTerminated NodeStatus = "terminated"
	NodeStatusFailing    NodeStatus = "failing"
	NodeStatusFailed     NodeStatus = "failed"
)

// Node is the scheduler's essential view of a registered machine.
type Node struct {
	ID       string
	Status   NodeStatus
	Resource *Resource
}

// ─── Instance ────────────────────────────────────────────────────────────────

// InstanceType identifies the kind of workload an Instance runs.
type InstanceType string

const (
	InstanceTypeContainer InstanceType = "container"
)

// InstanceStatus represents the lifecycle state of an instance.
type InstanceStatus string

const (
	InstanceStatusScheduling InstanceStatus = "scheduling"
	InstanceStatusStarting   InstanceStatus = "starting"
	InstanceStatusRunning    InstanceStatus = "running"
	InstanceStatusStopping   InstanceStatus = "stopping"
	InstanceStatusTerminated InstanceStatus = "terminated"
	InstanceStatusFailed     InstanceStatus = "failed"
)

// IsTerminal reports whether s is Terminated or Failed.
func (s InstanceStatus) IsTerminal() bool {
	return s == InstanceStatusTerminated || s == InstanceStatusFailed
}

// Port is an ordered source/destination port mapping.
type Port struct {
	Source      uint32 `json:"source"`
	Destination uint32 `json:"destination"`
}

// ResourceSummary is a cpu/memory/disk triple, used as either a limit or a usage snapshot.
type ResourceSummary struct {
	CPU    uint64 `json:"cpu"`    // millicores
	Memory uint64 `json:"memory"` // bytes
	Disk   uint64 `json:"disk"`   // bytes
}

// Resource pairs a limit with the most recently observed usage.
type Resource struct {
	Limit ResourceSummary `json:"limit"`
	Usage ResourceSummary `json:"usage"`
}

// Fits reports whether available capacity (limit - usage) can accommodate desired.
func (r Resource) Fits(desired ResourceSummary) bool {
	return r.Limit.CPU-r.Usage.CPU >= desired.CPU &&
		r.Limit.Memory-r.Usage.Memory >= desired.Memory &&
		r.Limit.Disk-r.Usage.Disk >= desired.Disk
}

// Instance is the scheduler's essential view of a workload instance.
type Instance struct {
	ID          string
	Name        string
	Type        InstanceType
	Status      InstanceStatus
	URI         string
	Environment []string
	Resource    Resource
	Ports       []Port
	IP          string
}

// ─── Events ──────────────────────────────────────────────────────────────────

// EventKind tags the variant carried by an orchestrator Event.
type EventKind string

const (
	EventInstanceCreate      EventKind = "instance_create"
	EventInstanceStop        EventKind = "instance_stop"
	EventInstanceDestroy     EventKind = "instance_destroy"
	EventInstanceTerminated  EventKind = "instance_terminated"
	EventInstanceStreamCrash EventKind = "instance_stream_crash"
	EventNodeRegister        EventKind = "node_register"
	EventNodeUnregister      EventKind = "node_unregister"
	EventNodeStatus          EventKind = "node_status"
	EventNodeStreamCrash     EventKind = "node_stream_crash"
)

// ─── Workload / Namespace (Controller expansion) ────────────────────────────

// Workload is a user-declared template the Reconciler drives toward N live Instances.
type Workload struct {
	Namespace   string          `json:"namespace"`
	Name        string          `json:"name"`
	URI         string          `json:"uri"`
	Environment []string        `json:"environment,omitempty"`
	Resource    ResourceSummary `json:"resource"`
	Ports       []Port          `json:"ports,omitempty"`
	Replicas    int             `json:"replicas"`
}

// AlertKind identifies the condition that produced an AlertEvent.
type AlertKind string

const (
	AlertNodeFailing    AlertKind = "node_failing"
	AlertNodeFailed     AlertKind = "node_failed"
	AlertInstanceFailed AlertKind = "instance_failed"
)

// AlertEvent is the JSON payload delivered to configured webhook subscribers.
type AlertEvent struct {
	Kind        AlertKind `json:"kind"`
	SubjectID   string    `json:"subject_id"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ─── Pagination ──────────────────────────────────────────────────────────────

// Page holds pagination parameters for list queries.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PagedResult wraps a list result with total count for pagination.
type PagedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  Page  `json:"page"`
}
