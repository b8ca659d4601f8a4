package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/controller/internal/kvstore"
	"github.com/fleetd-sh/fleetd/shared/types"
)

// WorkloadHandler serves the /workload resource, backed directly by the
// key/value store — the Reconciler reads the same records this handler
// writes under the key "workload.<namespace>.<name>".
type WorkloadHandler struct {
	kv     *kvstore.Store
	logger *zap.Logger
}

// NewWorkloadHandler wires a WorkloadHandler to the key/value store.
func NewWorkloadHandler(kv *kvstore.Store, logger *zap.Logger) *WorkloadHandler {
	return &WorkloadHandler{kv: kv, logger: logger.Named("workload_handler")}
}

func workloadKey(namespace, name string) string {
	return fmt.Sprintf("workload.%s.%s", namespace, name)
}

// Put declares or replaces a Workload under namespace/name.
func (h *WorkloadHandler) Put(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	var wl types.Workload
	if !decodeJSON(w, r, &wl) {
		return
	}
	wl.Namespace = namespace
	wl.Name = name
	if wl.Replicas <= 0 {
		wl.Replicas = 1
	}

	raw, err := json.Marshal(wl)
	if err != nil {
		ErrInternal(w)
		return
	}
	if err := h.kv.Put(r.Context(), workloadKey(namespace, name), raw); err != nil {
		h.logger.Error("failed to put workload", zap.Error(err))
		ErrInternal(w)
		return
	}
	Ok(w, wl)
}

// Get returns the declared Workload under namespace/name.
func (h *WorkloadHandler) Get(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	raw, ok, err := h.kv.Get(r.Context(), workloadKey(namespace, name))
	if err != nil {
		h.logger.Error("failed to get workload", zap.Error(err))
		ErrInternal(w)
		return
	}
	if !ok {
		ErrNotFound(w)
		return
	}

	var wl types.Workload
	if err := json.Unmarshal(raw, &wl); err != nil {
		h.logger.Error("failed to unmarshal workload", zap.Error(err))
		ErrInternal(w)
		return
	}
	Ok(w, wl)
}

// Delete removes the declared Workload under namespace/name. The Reconciler
// stops creating new replicas for it on its next tick; existing instances
// are left running.
func (h *WorkloadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	if err := h.kv.Delete(r.Context(), workloadKey(namespace, name)); err != nil {
		h.logger.Error("failed to delete workload", zap.Error(err))
		ErrInternal(w)
		return
	}
	NoContent(w)
}

// List returns every declared Workload.
func (h *WorkloadHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.kv.GetAll(r.Context(), "workload.")
	if err != nil {
		h.logger.Error("failed to list workloads", zap.Error(err))
		ErrInternal(w)
		return
	}

	out := make([]types.Workload, 0, len(records))
	for key, raw := range records {
		var wl types.Workload
		if err := json.Unmarshal(raw, &wl); err != nil {
			h.logger.Warn("skipping malformed workload record", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, wl)
	}
	Ok(w, out)
}

