package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/fleetd-sh/fleetd/scheduler/internal/config"
	"github.com/fleetd-sh/fleetd/scheduler/internal/dialer"
	"github.com/fleetd-sh/fleetd/scheduler/internal/grpcapi"
	"github.com/fleetd-sh/fleetd/scheduler/internal/orchestrator"
	schedpb "github.com/fleetd-sh/fleetd/shared/proto/scheduler"
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
		Use:   "fleetd-scheduler",
		Short: "fleetd scheduler — placement and node-fleet control plane",
		Long: `fleetd-scheduler receives node registrations and instance requests over
gRPC, places instances onto nodes by available resource, and forwards
aggregate node status upstream to the controller.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.AddCommand(newVersionCmd())

	root.PersistentFlags().StringVar(&cfg.Host, "host", cfg.Host, "Listen host for node/instance gRPC services")
	root.PersistentFlags().StringVar(&cfg.Port, "port", cfg.Port, "Listen port for node/instance gRPC services")
	root.PersistentFlags().StringVar(&cfg.ControllerHost, "controller-host", cfg.ControllerHost, "Controller host to dial for status upstreaming")
	root.PersistentFlags().StringVar(&cfg.ControllerPort, "controller-port", cfg.ControllerPort, "Controller port to dial for status upstreaming")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address")

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fleetd-scheduler %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	listenAddr := net.JoinHostPort(cfg.Host, cfg.Port)
	controllerAddr := net.JoinHostPort(cfg.ControllerHost, cfg.ControllerPort)

	logger.Info("starting fleetd scheduler",
		zap.String("version", version),
		zap.String("listen_addr", listenAddr),
		zap.String("controller_addr", controllerAddr),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --- 1. Orchestrator event loop ---
	orch := orchestrator.New(logger)
	go orch.Run(ctx)

	// --- 2. Controller dialer ---
	dial := dialer.New(controllerAddr, logger)
	go dial.Run(ctx, func() { orch.SetUpstream(dial) })

	// --- 3. gRPC server ---
	nodeSrv := grpcapi.NewNodeServer(orch.Events(), logger)
	instanceSrv := grpcapi.NewInstanceServer(orch.Events())

	grpcSrv := grpc.NewServer()
	schedpb.RegisterNodeServiceServer(grpcSrv, nodeSrv)
	schedpb.RegisterInstanceServiceServer(grpcSrv, instanceSrv)

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listenAddr, err)
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", listenAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
			cancel()
		}
	}()

	// --- 4. Metrics server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down fleetd scheduler")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown error", zap.Error(err))
	}

	grpcSrv.GracefulStop()

	logger.Info("fleetd scheduler stopped")
	return nil
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
