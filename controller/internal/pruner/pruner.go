// Package pruner implements the Controller's periodic retention sweep
// (C13): delete key/value records for instances that reached a terminal
// state more than a retention window ago. Deliberately built on
// robfig/cron/v3 rather than gocron so it keeps its own, simpler dependency
// distinct from the Reconciler's singleton-mode job.
package pruner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/controller/internal/instanceindex"
	"github.com/fleetd-sh/fleetd/controller/internal/kvstore"
)

// instanceRecord mirrors the JSON document stored under
// instance.<namespace>.<name>, as written by the HTTP API.
type instanceRecord struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

const (
	statusTerminated int32 = 4
	statusFailed     int32 = 6
)

// Pruner wraps a robfig/cron scheduler running a single fixed-interval job.
type Pruner struct {
	cron      *cron.Cron
	kv        *kvstore.Store
	index     *instanceindex.Index
	retention time.Duration
	logger    *zap.Logger
}

// New creates a Pruner. retention is how long a terminal instance's record
// is kept after its last status transition before being deleted.
func New(kv *kvstore.Store, index *instanceindex.Index, retention time.Duration, logger *zap.Logger) *Pruner {
	return &Pruner{
		cron:      cron.New(),
		kv:        kv,
		index:     index,
		retention: retention,
		logger:    logger.Named("pruner"),
	}
}

// Start schedules the sweep to run every 5 minutes and starts the cron
// scheduler's own goroutine.
func (p *Pruner) Start() error {
	if _, err := p.cron.AddFunc("@every 5m", p.sweep); err != nil {
		return fmt.Errorf("pruner: failed to register job: %w", err)
	}
	p.cron.Start()
	p.logger.Info("pruner started", zap.Duration("retention", p.retention))
	return nil
}

// Stop halts the cron scheduler, waiting for any in-flight sweep to finish.
func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
}

// sweep deletes every instance.<namespace>.<name> record whose tracked
// status is terminal and whose last transition is older than the retention
// window. A record with no tracked index entry (index lost on restart) or a
// non-terminal status is never deleted, regardless of age.
func (p *Pruner) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := p.kv.GetAll(ctx, "instance.")
	if err != nil {
		p.logger.Error("failed to list instance records", zap.Error(err))
		return
	}

	cutoff := time.Now().Add(-p.retention)
	pruned := 0

	for key, raw := range records {
		var rec instanceRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			p.logger.Warn("skipping malformed instance record", zap.String("key", key), zap.Error(err))
			continue
		}

		tracked, ok := p.index.Get(rec.ID)
		if !ok {
			continue
		}
		if tracked.Status != statusTerminated && tracked.Status != statusFailed {
			continue
		}
		if tracked.UpdatedAt.After(cutoff) {
			continue
		}

		if err := p.kv.Delete(ctx, key); err != nil {
			p.logger.Warn("failed to prune instance record", zap.String("key", key), zap.Error(err))
			continue
		}
		p.index.Remove(rec.ID)
		pruned++
	}

	if pruned > 0 {
		p.logger.Info("pruned terminal instance records", zap.Int("count", pruned))
	}
}
