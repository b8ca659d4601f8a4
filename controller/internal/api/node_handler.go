package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/controller/internal/nodecache"
)

// NodeHandler serves the read-only /node resource, backed by the in-memory
// node cache fed by nodeserver. Node status is never written through the
// HTTP API — it is owned entirely by the Scheduler's stream.
type NodeHandler struct {
	cache  *nodecache.Cache
	logger *zap.Logger
}

// NewNodeHandler wires a NodeHandler to the node cache.
func NewNodeHandler(cache *nodecache.Cache, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{cache: cache, logger: logger.Named("node_handler")}
}

// List returns every known node snapshot.
func (h *NodeHandler) List(w http.ResponseWriter, r *http.Request) {
	Ok(w, h.cache.List())
}

// Get returns the snapshot for a single node id.
func (h *NodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, ok := h.cache.Get(id)
	if !ok {
		ErrNotFound(w)
		return
	}
	Ok(w, snap)
}
