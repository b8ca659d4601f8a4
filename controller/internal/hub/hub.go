package hub

import "sync"

// Hub is the central pub/sub broker for WebSocket watchers. Mutations to the
// client registry are serialised through a single goroutine — the Run loop
// — via channels; Run takes the write lock while it changes the registry.
// Publish makes only non-blocking sends while holding the read lock, so Run
// cannot close a client's channel mid-send, and a client whose buffer is full
// is queued for unregistration instead of stalling the publisher.
type Hub struct {
	clients map[*Client]struct{}
	topics  map[string]map[*Client]struct{}

	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
}

// NewHub creates an idle Hub. Call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		topics:     make(map[string]map[*Client]struct{}),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		stopped:    make(chan struct{}),
	}
}

// Run starts the hub's event loop. Call exactly once, in its own goroutine.
// It exits when ctx is cancelled.
func (h *Hub) Run(ctx interface{ Done() <-chan struct{} }) {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			for _, topic := range client.topics {
				if h.topics[topic] == nil {
					h.topics[topic] = make(map[*Client]struct{})
				}
				h.topics[topic][client] = struct{}{}
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for _, topic := range client.topics {
					delete(h.topics[topic], client)
					if len(h.topics[topic]) == 0 {
						delete(h.topics, topic)
					}
				}
				close(client.send)
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]struct{})
			h.topics = make(map[string]map[*Client]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Publish sends msg to every client subscribed to topic and to every client
// subscribed to the wildcard "all" topic. Safe to call from any goroutine.
func (h *Hub) Publish(topic string, msg Message) {
	h.publishTopic(topic, msg)
	if topic != "all" {
		h.publishTopic("all", msg)
	}
}

func (h *Hub) publishTopic(topic string, msg Message) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.topics[topic] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.unregister <- c
	}
}

// Subscribe registers client with the hub.
func (h *Hub) Subscribe(client *Client) { h.register <- client }

// Unsubscribe removes client from the hub.
func (h *Hub) Unsubscribe(client *Client) { h.unregister <- client }

// ConnectedCount returns the current number of connected watchers.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
