// Package reconciler implements the Controller's periodic desired-state
// re-drive (C12): on each tick, compare every declared Workload's desired
// replica count against the live instances tracked in the instance index,
// and issue Create calls for any shortfall. This is the mechanism behind
// the Scheduler holding no state across restarts — the Controller's
// key/value store is the only durable record of desired state.
//
// Grounded on the teacher's gocron-based backup scheduler: one singleton-mode
// job, re-scheduled at a fixed period rather than per-policy cron
// expressions, since there is exactly one kind of tick here.
package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/controller/internal/instanceindex"
	"github.com/fleetd-sh/fleetd/controller/internal/kvstore"
	"github.com/fleetd-sh/fleetd/controller/internal/schedclient"
	"github.com/fleetd-sh/fleetd/shared/types"
)

// Reconciler wraps a gocron scheduler running a single ticked job.
type Reconciler struct {
	cron   gocron.Scheduler
	kv     *kvstore.Store
	sched  *schedclient.Client
	index  *instanceindex.Index
	period time.Duration
	logger *zap.Logger
}

// New creates a Reconciler. Call Start to begin ticking.
func New(kv *kvstore.Store, sched *schedclient.Client, index *instanceindex.Index, period time.Duration, logger *zap.Logger) (*Reconciler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("reconciler: failed to create gocron scheduler: %w", err)
	}
	return &Reconciler{cron: s, kv: kv, sched: sched, index: index, period: period, logger: logger.Named("reconciler")}, nil
}

// Start registers the ticked job and starts the underlying gocron scheduler.
func (r *Reconciler) Start() error {
	_, err := r.cron.NewJob(
		gocron.DurationJob(r.period),
		gocron.NewTask(r.tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("reconciler: failed to register job: %w", err)
	}
	r.cron.Start()
	r.logger.Info("reconciler started", zap.Duration("period", r.period))
	return nil
}

// Stop shuts down the underlying gocron scheduler, waiting for any
// in-flight tick to finish.
func (r *Reconciler) Stop() error {
	if err := r.cron.Shutdown(); err != nil {
		return fmt.Errorf("reconciler: shutdown error: %w", err)
	}
	return nil
}

// tick is the job body, re-run every period in singleton mode so a slow
// previous tick is never overlapped by the next one.
func (r *Reconciler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workloads, err := r.kv.GetAll(ctx, "workload.")
	if err != nil {
		r.logger.Error("failed to list workloads", zap.Error(err))
		return
	}

	for key, raw := range workloads {
		namespace, name, ok := parseWorkloadKey(key)
		if !ok {
			r.logger.Warn("skipping malformed workload key", zap.String("key", key))
			continue
		}

		var wl types.Workload
		if err := json.Unmarshal(raw, &wl); err != nil {
			r.logger.Error("failed to unmarshal workload", zap.String("key", key), zap.Error(err))
			continue
		}
		replicas := wl.Replicas
		if replicas <= 0 {
			replicas = 1
		}

		live := r.index.CountForWorkload(namespace, name)
		shortfall := replicas - live
		if shortfall <= 0 {
			continue
		}

		r.logger.Info("reconciling workload shortfall",
			zap.String("namespace", namespace),
			zap.String("name", name),
			zap.Int("live", live),
			zap.Int("desired", replicas),
		)

		for i := 0; i < shortfall; i++ {
			inst := instanceFromWorkload(&wl)
			if _, err := r.sched.Create(ctx, namespace, name, name, inst); err != nil {
				r.logger.Warn("failed to create instance for workload shortfall",
					zap.String("namespace", namespace),
					zap.String("name", name),
					zap.Error(err),
				)
			}
		}
	}
}

func parseWorkloadKey(key string) (namespace, name string, ok bool) {
	rest, ok := strings.CutPrefix(key, "workload.")
	if !ok {
		return "", "", false
	}
	namespace, name, ok = strings.Cut(rest, ".")
	return namespace, name, ok
}
