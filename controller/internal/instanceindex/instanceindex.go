// Package instanceindex tracks the mapping between a scheduler-assigned
// instance id and the namespace/name the Controller's API created it under,
// plus the most recent status frame forwarded for that id. The Scheduler
// itself is stateless across restarts, so this index — together with the
// workload records in the key/value store — is what lets the Controller
// answer "what instances exist" without re-asking the Scheduler.
package instanceindex

import (
	"sync"
	"time"
)

// Record is one tracked instance.
type Record struct {
	ID                string
	Namespace         string
	Name              string
	Workload          string // workload name this instance was created for, empty for one-off instances
	Status            int32
	StatusDescription string
	UpdatedAt         time.Time
}

// Index is a concurrency-safe registry of Records.
type Index struct {
	mu   sync.RWMutex
	byID map[string]*Record
}

// New returns an empty Index.
func New() *Index {
	return &Index{byID: make(map[string]*Record)}
}

// Track registers a newly created instance id under namespace/name. workload
// is the owning Workload's name, or empty for a direct one-off instance.
func (x *Index) Track(id, namespace, name, workload string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.byID[id] = &Record{ID: id, Namespace: namespace, Name: name, Workload: workload}
}

// UpdateStatus records a new status frame for id, returning the updated
// Record and the previous status code (or -1 if id was not tracked).
func (x *Index) UpdateStatus(id string, status int32, description string) (*Record, int32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	r, ok := x.byID[id]
	if !ok {
		r = &Record{ID: id}
		x.byID[id] = r
	}
	prev := int32(-1)
	if ok {
		prev = r.Status
	}
	r.Status = status
	r.StatusDescription = description
	r.UpdatedAt = time.Now().UTC()
	return r, prev
}

// Get returns the tracked Record for id.
func (x *Index) Get(id string) (*Record, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	r, ok := x.byID[id]
	return r, ok
}

// Remove drops id from the index, e.g. once its KV record has been pruned.
func (x *Index) Remove(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.byID, id)
}

// CountForWorkload returns the number of tracked, non-terminal instances
// belonging to the given namespace/workload pair.
func (x *Index) CountForWorkload(namespace, workload string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, r := range x.byID {
		if r.Namespace == namespace && r.Workload == workload && !isTerminal(r.Status) {
			n++
		}
	}
	return n
}

// List returns every tracked Record.
func (x *Index) List() []*Record {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]*Record, 0, len(x.byID))
	for _, r := range x.byID {
		out = append(out, r)
	}
	return out
}

// statusTerminated and statusFailed mirror the scheduler's status widening
// constants (convert.StatusTerminated, convert.StatusFailed) without taking
// a dependency on the scheduler module.
const (
	statusTerminated = 4
	statusFailed     = 6
)

func isTerminal(status int32) bool {
	return status == statusTerminated || status == statusFailed
}
