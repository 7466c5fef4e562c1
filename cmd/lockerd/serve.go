package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/liveforeverx/locker/internal/configuration"
	"github.com/liveforeverx/locker/internal/coordinator"
	"github.com/liveforeverx/locker/internal/logging"
	"github.com/liveforeverx/locker/internal/metrics"
	"github.com/liveforeverx/locker/internal/replica"
	"github.com/liveforeverx/locker/internal/transport"
	"github.com/liveforeverx/locker/internal/transport/endpoint"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run one replica of the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, _ := cmd.Flags().GetString("config")
		return runServe(configDir)
	},
}

func init() {
	serveCmd.Flags().String("config", ".", "directory holding application.yml")
}

func runServe(configDir string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	cfg, err := configuration.Load(configDir)
	if err != nil {
		return err
	}

	logging.Init(cfg.App.LogLevel)
	slog.Info("starting locker node", "node_id", cfg.Cluster.NodeID)

	rep := replica.New(replica.Config{
		NodeID:             cfg.Cluster.NodeID,
		Primaries:          cfg.Cluster.Primaries,
		Replicas:           cfg.Cluster.Replicas,
		W:                  cfg.Cluster.W,
		LockTTL:            cfg.Cluster.LockTTL(),
		LockSweepInterval:  cfg.Cluster.LockSweepInterval(),
		LeaseSweepInterval: cfg.Cluster.LeaseSweepInterval(),
	})
	rep.Start()

	registry := transport.NewRegistry()
	coord := coordinator.New(rep, registry, cfg.Transport.Timeout())

	svc := transport.NewService(transport.ServerConfig{
		Network:              cfg.Transport.Network,
		Address:              cfg.Transport.Address,
		PeerPort:             cfg.Transport.PeerPort,
		ClientPort:           cfg.Transport.ClientPort,
		Timeout:              cfg.Transport.Timeout(),
		MaxConcurrentStreams: cfg.Transport.MaxConcurrentStreams,
	},
		endpoint.NewPeerEndpoint(rep, coord),
		endpoint.NewClientEndpoint(rep, coord, cfg.Cluster.DefaultLeaseMS),
	)

	if _, err := svc.StartPeerServer(); err != nil {
		return err
	}
	if _, err := svc.StartClientServer(); err != nil {
		return err
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Addr != "" {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr)
		metricsServer.Start()
	}

	slog.Info("locker node ready", "node_id", cfg.Cluster.NodeID)
	<-ctx.Done()

	slog.Info("shutting down", "node_id", cfg.Cluster.NodeID)
	svc.Stop()
	if metricsServer != nil {
		metricsServer.Stop()
	}
	registry.Close()
	rep.Stop()

	return nil
}
