// Package main is the entry point for the fleetd-node-agent binary.
// It wires all internal packages together and starts the connection loop.
//
// Startup sequence:
//  1. Parse CLI flags / environment variables
//  2. Build logger
//  3. Start the connection manager's registration + status loop
//  4. Wait for the Scheduler to admit the node and hand back a subnet
//  5. Set up the node's bridge network
//  6. Start the Docker-backed InstanceService gRPC server
//  7. Block until SIGINT/SIGTERM, then tear down network and disconnect
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/fleetd-sh/fleetd/agent/internal/config"
	"github.com/fleetd-sh/fleetd/agent/internal/connection"
	"github.com/fleetd-sh/fleetd/agent/internal/network"
	"github.com/fleetd-sh/fleetd/agent/internal/runtime"
	agentpb "github.com/fleetd-sh/fleetd/shared/proto/agent"
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
		Use:   "fleetd-node-agent",
		Short: "fleetd node agent — runs container instances on behalf of the Scheduler",
		Long: `fleetd-node-agent registers with the Scheduler, reports periodic node
status and resource usage, and creates/signals container instances the
Scheduler places on this node via the Docker daemon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.AddCommand(newVersionCmd())

	root.PersistentFlags().StringVar(&cfg.SchedulerAddr, "scheduler-addr", cfg.SchedulerAddr, "Scheduler gRPC address (host:port)")
	root.PersistentFlags().StringVar(&cfg.Certificate, "certificate", cfg.Certificate, "Certificate presented to the Scheduler at registration")
	root.PersistentFlags().StringVar(&cfg.DockerHost, "docker-host", cfg.DockerHost, "Docker daemon address (empty = SDK default)")
	root.PersistentFlags().StringVar(&cfg.InstanceAddr, "instance-addr", cfg.InstanceAddr, "InstanceService listen address, dialed by the Scheduler")
	root.PersistentFlags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "Directory for node state (node-state.json)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fleetd-node-agent %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting fleetd node agent",
		zap.String("version", version),
		zap.String("scheduler_addr", cfg.SchedulerAddr),
		zap.String("instance_addr", cfg.InstanceAddr),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --- Connection manager: register with the Scheduler and report status ---
	mgr := connection.New(connection.Config{
		SchedulerAddr: cfg.SchedulerAddr,
		Certificate:   cfg.Certificate,
		StateDir:      cfg.StateDir,
	}, logger)

	connDone := make(chan struct{})
	go func() {
		defer close(connDone)
		mgr.Run(ctx)
	}()

	nodeID, subnet, err := waitForRegistration(ctx, mgr)
	if err != nil {
		cancel()
		<-connDone
		return fmt.Errorf("failed to register with scheduler: %w", err)
	}
	logger.Info("node admitted", zap.String("node_id", nodeID), zap.String("subnet", subnet))

	// --- Networking helper ---
	netHelper := network.New(nodeID, subnet, logger)
	if err := netHelper.SetupNode(ctx); err != nil {
		logger.Warn("node network setup failed", zap.Error(err))
	}
	defer func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		if err := netHelper.CleanNode(cleanupCtx); err != nil {
			logger.Warn("node network cleanup failed", zap.Error(err))
		}
	}()

	// --- Container runtime driver ---
	driver, err := runtime.New(cfg.DockerHost, netHelper, logger)
	if err != nil {
		return fmt.Errorf("failed to create runtime driver: %w", err)
	}
	if err := driver.Ping(ctx); err != nil {
		logger.Warn("docker daemon unreachable at startup", zap.Error(err))
	}
	defer driver.Close()

	grpcSrv := grpc.NewServer()
	agentpb.RegisterInstanceServiceServer(grpcSrv, driver)

	lis, err := net.Listen("tcp", cfg.InstanceAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.InstanceAddr, err)
	}

	go func() {
		logger.Info("instance service listening", zap.String("addr", cfg.InstanceAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("instance service error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down fleetd node agent")
	grpcSrv.GracefulStop()
	<-connDone

	logger.Info("fleetd node agent stopped")
	return nil
}

// waitForRegistration polls the connection manager until it reports a node
// ID (first successful Register RPC) or ctx is cancelled.
func waitForRegistration(ctx context.Context, mgr *connection.Manager) (string, string, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if id := mgr.NodeID(); id != "" {
			return id, mgr.Subnet(), nil
		}
		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		case <-ticker.C:
		}
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
