package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fleetd-sh/fleetd/controller/internal/hub"
	"github.com/fleetd-sh/fleetd/controller/internal/instanceindex"
	"github.com/fleetd-sh/fleetd/controller/internal/kvstore"
	"github.com/fleetd-sh/fleetd/controller/internal/nodecache"
	"github.com/fleetd-sh/fleetd/controller/internal/schedclient"
)

// RouterConfig holds all dependencies needed to build the HTTP router. It is
// populated in main.go after all components are initialized and passed to
// NewRouter as a single struct to keep the constructor signature manageable
// as the number of dependencies grows.
type RouterConfig struct {
	KV          *kvstore.Store
	SchedClient *schedclient.Client
	InstanceIdx *instanceindex.Index
	NodeCache   *nodecache.Cache
	Hub         *hub.Hub
	Logger      *zap.Logger
}

// NewRouter builds the fully configured Chi router. All resource routes are
// registered under /api/v1; /metrics and /watch sit at the root since they
// are infrastructure, not domain resources.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	workloadHandler := NewWorkloadHandler(cfg.KV, cfg.Logger)
	instanceHandler := NewInstanceHandler(cfg.KV, cfg.SchedClient, cfg.InstanceIdx, cfg.Logger)
	nodeHandler := NewNodeHandler(cfg.NodeCache, cfg.Logger)
	watchHandler := NewWatchHandler(cfg.Hub, cfg.Logger)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/watch", watchHandler.Watch)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/workload", func(r chi.Router) {
			r.Get("/", workloadHandler.List)
			r.Route("/{namespace}/{name}", func(r chi.Router) {
				r.Put("/", workloadHandler.Put)
				r.Get("/", workloadHandler.Get)
				r.Delete("/", workloadHandler.Delete)
			})
		})

		r.Route("/instance", func(r chi.Router) {
			r.Get("/", instanceHandler.List)
			r.Route("/{namespace}/{name}", func(r chi.Router) {
				r.Put("/", instanceHandler.Put)
				r.Get("/", instanceHandler.Get)
				r.Post("/stop", instanceHandler.Stop)
				r.Post("/destroy", instanceHandler.Destroy)
			})
		})

		r.Route("/node", func(r chi.Router) {
			r.Get("/", nodeHandler.List)
			r.Get("/{id}", nodeHandler.Get)
		})
	})

	return r
}
