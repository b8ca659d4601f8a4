package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/controller/internal/instanceindex"
	"github.com/fleetd-sh/fleetd/controller/internal/kvstore"
	"github.com/fleetd-sh/fleetd/controller/internal/schedclient"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
	"github.com/fleetd-sh/fleetd/shared/types"
)

// instanceRecord is the JSON document persisted under
// instance.<namespace>.<name>, used by the Pruner to locate terminal
// instance records independently of the in-memory index surviving restart.
type instanceRecord struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// createInstanceRequest is the body accepted by PUT /instance/{namespace}/{name}.
type createInstanceRequest struct {
	URI         string                `json:"uri"`
	Environment []string              `json:"environment,omitempty"`
	Resource    types.ResourceSummary `json:"resource"`
	Ports       []types.Port          `json:"ports,omitempty"`
}

// InstanceHandler serves the /instance resource: direct one-off creation and
// lifecycle control via the Scheduler client, with a KV-backed record for
// lookup by namespace/name and pruning of terminal instances.
type InstanceHandler struct {
	kv     *kvstore.Store
	sched  *schedclient.Client
	index  *instanceindex.Index
	logger *zap.Logger
}

// NewInstanceHandler wires an InstanceHandler to its dependencies.
func NewInstanceHandler(kv *kvstore.Store, sched *schedclient.Client, index *instanceindex.Index, logger *zap.Logger) *InstanceHandler {
	return &InstanceHandler{kv: kv, sched: sched, index: index, logger: logger.Named("instance_handler")}
}

func instanceKey(namespace, name string) string {
	return fmt.Sprintf("instance.%s.%s", namespace, name)
}

// Put creates a one-off instance under namespace/name — not owned by any
// Workload, so the Reconciler never recreates it if it later fails.
func (h *InstanceHandler) Put(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	var req createInstanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ports := make([]*schedpb.Port, 0, len(req.Ports))
	for _, p := range req.Ports {
		ports = append(ports, &schedpb.Port{Source: p.Source, Destination: p.Destination})
	}
	inst := &schedpb.Instance{
		Name:        name,
		Type:        schedpb.InstanceType_CONTAINER,
		Uri:         req.URI,
		Environment: req.Environment,
		Resource: &schedpb.Resource{
			Limit: &schedpb.ResourceSummary{
				Cpu:    req.Resource.CPU,
				Memory: req.Resource.Memory,
				Disk:   req.Resource.Disk,
			},
		},
		Ports: ports,
	}

	status, err := h.sched.Create(r.Context(), namespace, name, "", inst)
	if err != nil {
		h.logger.Error("failed to create instance", zap.Error(err))
		ErrInternal(w)
		return
	}

	rec := instanceRecord{ID: status.Id, Namespace: namespace, Name: name}
	raw, err := json.Marshal(rec)
	if err != nil {
		ErrInternal(w)
		return
	}
	if err := h.kv.Put(r.Context(), instanceKey(namespace, name), raw); err != nil {
		h.logger.Error("failed to persist instance record", zap.Error(err))
		ErrInternal(w)
		return
	}

	Created(w, map[string]any{
		"id":                 status.Id,
		"namespace":          namespace,
		"name":               name,
		"status":             status.Status,
		"status_description": status.StatusDescription,
	})
}

// Get returns the tracked status of the instance under namespace/name.
func (h *InstanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	id, ok, err := h.lookupID(r.Context(), namespace, name)
	if err != nil {
		ErrInternal(w)
		return
	}
	if !ok {
		ErrNotFound(w)
		return
	}

	record, ok := h.index.Get(id)
	if !ok {
		ErrNotFound(w)
		return
	}
	Ok(w, record)
}

// List returns every tracked instance.
func (h *InstanceHandler) List(w http.ResponseWriter, r *http.Request) {
	Ok(w, h.index.List())
}

// Stop asks the Scheduler to gracefully stop the instance under namespace/name.
func (h *InstanceHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.sched.Stop)
}

// Destroy asks the Scheduler to forcibly kill the instance under namespace/name.
func (h *InstanceHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.sched.Destroy)
}

func (h *InstanceHandler) lifecycleAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id string) error) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	id, ok, err := h.lookupID(r.Context(), namespace, name)
	if err != nil {
		ErrInternal(w)
		return
	}
	if !ok {
		ErrNotFound(w)
		return
	}

	if err := action(r.Context(), id); err != nil {
		h.logger.Error("instance lifecycle action failed", zap.String("id", id), zap.Error(err))
		ErrInternal(w)
		return
	}
	NoContent(w)
}

// lookupID resolves a namespace/name pair to the scheduler-assigned instance
// id recorded at creation time.
func (h *InstanceHandler) lookupID(ctx context.Context, namespace, name string) (string, bool, error) {
	raw, ok, err := h.kv.Get(ctx, instanceKey(namespace, name))
	if err != nil {
		return "", false, fmt.Errorf("instance_handler: lookup %s/%s: %w", namespace, name, err)
	}
	if !ok {
		return "", false, nil
	}
	var rec instanceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", false, fmt.Errorf("instance_handler: malformed record for %s/%s: %w", namespace, name, err)
	}
	return rec.ID, true, nil
}
