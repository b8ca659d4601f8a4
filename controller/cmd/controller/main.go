package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fleetd-sh/fleetd/controller/internal/alerting"
	"github.com/fleetd-sh/fleetd/controller/internal/api"
	"github.com/fleetd-sh/fleetd/controller/internal/config"
	"github.com/fleetd-sh/fleetd/controller/internal/hub"
	"github.com/fleetd-sh/fleetd/controller/internal/instanceindex"
	"github.com/fleetd-sh/fleetd/controller/internal/kvstore"
	"github.com/fleetd-sh/fleetd/controller/internal/nodecache"
	"github.com/fleetd-sh/fleetd/controller/internal/nodeserver"
	"github.com/fleetd-sh/fleetd/controller/internal/pruner"
	"github.com/fleetd-sh/fleetd/controller/internal/reconciler"
	"github.com/fleetd-sh/fleetd/controller/internal/schedclient"
	controllerpb "github.com/fleetd-sh/fleetd/shared/proto/controller"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Defaults()

	root := &cobra.Command{
		Use:   "fleetd-controller",
		Short: "fleetd controller — desired-state store and public API",
		Long: `fleetd-controller holds declared workloads and instances in a durable
key/value store, reconciles desired replica counts against the Scheduler,
prunes terminal instance records, and exposes a REST API and live status
WebSocket for operators.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.AddCommand(newVersionCmd())

	root.PersistentFlags().StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP API listen address")
	root.PersistentFlags().StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address for the Scheduler's node status stream")
	root.PersistentFlags().StringVar(&cfg.SchedulerAddr, "scheduler-addr", cfg.SchedulerAddr, "Scheduler address to dial for instance lifecycle calls")
	root.PersistentFlags().StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "Database driver (sqlite or postgres)")
	root.PersistentFlags().StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "Database DSN or file path for SQLite")
	root.PersistentFlags().DurationVar(&cfg.ReconcileInterval, "reconcile-interval", cfg.ReconcileInterval, "Interval between reconciler ticks")
	root.PersistentFlags().DurationVar(&cfg.PruneAfter, "prune-after", cfg.PruneAfter, "Retention window for terminal instance records")
	root.PersistentFlags().StringSliceVar(&cfg.AlertWebhooks, "alert-webhook", cfg.AlertWebhooks, "Webhook URL to notify on node/instance failure (repeatable)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fleetd-controller %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting fleetd controller",
		zap.String("version", version),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("grpc_addr", cfg.GRPCAddr),
		zap.String("scheduler_addr", cfg.SchedulerAddr),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --- 1. Key/value store ---
	kv, err := kvstore.New(kvstore.Config{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DBDSN,
		Logger:   logger,
		LogLevel: gormLogLevel(cfg.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to open key/value store: %w", err)
	}

	// --- 2. In-memory caches and the status hub ---
	nodeCache := nodecache.New()
	instanceIdx := instanceindex.New()
	statusHub := hub.NewHub()
	go statusHub.Run(ctx)

	alerts := alerting.New(cfg.AlertWebhooks, logger)

	// --- 3. Scheduler client ---
	sched, err := schedclient.Dial(cfg.SchedulerAddr, instanceIdx, statusHub, alerts, logger)
	if err != nil {
		return fmt.Errorf("failed to dial scheduler: %w", err)
	}
	defer sched.Close()

	// --- 4. Reconciler ---
	recon, err := reconciler.New(kv, sched, instanceIdx, cfg.ReconcileInterval, logger)
	if err != nil {
		return fmt.Errorf("failed to create reconciler: %w", err)
	}
	if err := recon.Start(); err != nil {
		return fmt.Errorf("failed to start reconciler: %w", err)
	}
	defer func() {
		if err := recon.Stop(); err != nil {
			logger.Warn("reconciler shutdown error", zap.Error(err))
		}
	}()

	// --- 5. Pruner ---
	prune := pruner.New(kv, instanceIdx, cfg.PruneAfter, logger)
	if err := prune.Start(); err != nil {
		return fmt.Errorf("failed to start pruner: %w", err)
	}
	defer prune.Stop()

	// --- 6. gRPC server (node status stream) ---
	nodeSrv := nodeserver.New(nodeCache, statusHub, alerts, logger)
	grpcSrv := grpc.NewServer()
	controllerpb.RegisterNodeServiceServer(grpcSrv, nodeSrv)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
			cancel()
		}
	}()

	// --- 7. HTTP server ---
	router := api.NewRouter(api.RouterConfig{
		KV:          kv,
		SchedClient: sched,
		InstanceIdx: instanceIdx,
		NodeCache:   nodeCache,
		Hub:         statusHub,
		Logger:      logger,
	})

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down fleetd controller")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server graceful shutdown error", zap.Error(err))
	}
	grpcSrv.GracefulStop()

	logger.Info("fleetd controller stopped")
	return nil
}

// gormLogLevel maps the application log level string to a GORM logger level.
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "info":
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}
