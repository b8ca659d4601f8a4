package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/controller/internal/hub"
)

// WatchHandler upgrades GET /watch to a WebSocket subscribed to the "all"
// topic, streaming every node and instance status change as it happens.
type WatchHandler struct {
	hub    *hub.Hub
	logger *zap.Logger
}

// NewWatchHandler wires a WatchHandler to the hub.
func NewWatchHandler(h *hub.Hub, logger *zap.Logger) *WatchHandler {
	return &WatchHandler{hub: h, logger: logger.Named("watch_handler")}
}

// Watch upgrades the connection and runs the client until it disconnects.
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	client, err := hub.NewClient(h.hub, w, r, []string{"all"}, h.logger)
	if err != nil {
		h.logger.Warn("failed to upgrade watch connection", zap.Error(err))
		return
	}
	client.Run()
}
