// Package hub implements the Controller's live status fan-out (C15): a
// single-writer pub/sub broker that pushes node and instance status changes
// to connected WebSocket watchers (fleetctl watch, dashboards), adapted
// from the teacher's websocket hub to this domain's topic set.
//
// Topic naming convention:
//
//	node:<id>       — status updates for a specific node
//	instance:<id>   — status updates for a specific instance
//	all             — every node and instance update, used by GET /watch
package hub

// MessageType identifies the kind of event carried by a Message.
type MessageType string

const (
	// MsgNodeStatus is sent when a node's ControllerNodeStatus changes.
	MsgNodeStatus MessageType = "node.status"

	// MsgInstanceStatus is sent when an instance's InstanceStatus changes.
	MsgInstanceStatus MessageType = "instance.status"

	// MsgAlert is the message type for an AlertEvent payload. The alerting
	// package delivers alerts to webhooks only; nothing in the Controller
	// publishes MsgAlert messages to the hub.
	MsgAlert MessageType = "alert"
)

// Message is the envelope for every WebSocket frame sent to watchers.
type Message struct {
	Type    MessageType `json:"type"`
	Topic   string      `json:"topic"`
	Payload any         `json:"payload"`
}
