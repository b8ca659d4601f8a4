// Package nodecache holds the Controller's in-memory, read-through view of
// node status: the most recent ControllerNodeStatus frame received from the
// Scheduler for each node, keyed by node id. It is fed by the nodeserver
// package, which also uses the previous snapshot to decide when to fire
// alerts, and read by the HTTP API.
package nodecache

import (
	"sync"
	"time"

	controllerpb "github.com/fleetd-sh/fleetd/shared/proto/controller"
)

// Snapshot is the latest known status of one node.
type Snapshot struct {
	ID                string
	State             controllerpb.NodeState
	StatusDescription string
	Resource          *controllerpb.Resource
	InstanceIDs       []string
	UpdatedAt         time.Time
}

// Cache is a concurrency-safe map of node id to Snapshot.
type Cache struct {
	mu    sync.RWMutex
	nodes map[string]*Snapshot
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{nodes: make(map[string]*Snapshot)}
}

// Update records a new snapshot for the node, returning the previous
// snapshot (nil if this is the first sighting) so callers can detect state
// transitions without a separate lookup.
func (c *Cache) Update(s *Snapshot) (previous *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous = c.nodes[s.ID]
	c.nodes[s.ID] = s
	return previous
}

// Get returns the current snapshot for id.
func (c *Cache) Get(id string) (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.nodes[id]
	return s, ok
}

// List returns every known node snapshot.
func (c *Cache) List() []*Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Snapshot, 0, len(c.nodes))
	for _, s := range c.nodes {
		out = append(out, s)
	}
	return out
}

// LiveInstanceIDs returns the union of instance ids currently hosted by any
// known node. The Reconciler does not use it; it counts replicas through the
// instanceindex package.
func (c *Cache) LiveInstanceIDs() map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make(map[string]struct{})
	for _, s := range c.nodes {
		for _, id := range s.InstanceIDs {
			ids[id] = struct{}{}
		}
	}
	return ids
}
