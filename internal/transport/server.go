package transport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/liveforeverx/locker/internal/metrics"
	"google.golang.org/grpc"
)

// ServerConfig carries the listen settings for one node's two servers:
// the peer port the cluster fans out to and the client port the public
// surface lives on.
type ServerConfig struct {
	Network              string
	Address              string
	PeerPort             string
	ClientPort           string
	Timeout              time.Duration
	MaxConcurrentStreams uint32
}

// Service owns the two gRPC servers of a node.
type Service struct {
	cfg ServerConfig

	peer   PeerServer
	client ClientServer

	PeerServer   *grpc.Server
	ClientServer *grpc.Server
}

func NewService(cfg ServerConfig, peer PeerServer, client ClientServer) *Service {
	if cfg.Network == "" {
		cfg.Network = "tcp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	return &Service{cfg: cfg, peer: peer, client: client}
}

func (s *Service) StartPeerServer() (net.Listener, error) {
	lis, err := net.Listen(s.cfg.Network, net.JoinHostPort(s.cfg.Address, s.cfg.PeerPort))
	if err != nil {
		return nil, err
	}

	s.PeerServer = grpc.NewServer(s.serverOptions()...)
	s.PeerServer.RegisterService(&PeerServiceDesc, s.peer)

	slog.Info("transport listening for peers", "peer_addr", lis.Addr())
	go func() {
		if err := s.PeerServer.Serve(lis); err != nil {
			slog.Error("failed to serve peer listener", "error", err)
		}
	}()

	return lis, nil
}

func (s *Service) StartClientServer() (net.Listener, error) {
	lis, err := net.Listen(s.cfg.Network, net.JoinHostPort(s.cfg.Address, s.cfg.ClientPort))
	if err != nil {
		return nil, err
	}

	s.ClientServer = grpc.NewServer(s.serverOptions()...)
	s.ClientServer.RegisterService(&ClientServiceDesc, s.client)

	slog.Info("transport listening for clients", "client_addr", lis.Addr())
	go func() {
		if err := s.ClientServer.Serve(lis); err != nil {
			slog.Error("failed to serve client listener", "error", err)
		}
	}()

	return lis, nil
}

func (s *Service) Stop() {
	if s.ClientServer != nil {
		s.ClientServer.GracefulStop()
	}
	if s.PeerServer != nil {
		s.PeerServer.GracefulStop()
	}
	slog.Info("transport stopped")
}

func (s *Service) serverOptions() []grpc.ServerOption {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			timeoutInterceptor(s.cfg.Timeout),
			metrics.UnaryServerInterceptor(),
		),
	}
	if s.cfg.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(s.cfg.MaxConcurrentStreams))
	}
	return opts
}

func timeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		return handler(ctx, req)
	}
}
