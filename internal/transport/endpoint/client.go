package endpoint

import (
	"context"
	"errors"
	"log/slog"

	"github.com/liveforeverx/locker/internal/coordinator"
	"github.com/liveforeverx/locker/internal/replica"
	"github.com/liveforeverx/locker/internal/transport"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ClientEndpoint serves the public surface of a node. Coordinated
// operations run through the local coordinator; dirty reads and debug
// state come straight from the local replica.
type ClientEndpoint struct {
	Replica        *replica.Replica
	Coordinator    *coordinator.Coordinator
	DefaultLeaseMS int64
}

func NewClientEndpoint(r *replica.Replica, c *coordinator.Coordinator, defaultLeaseMS int64) *ClientEndpoint {
	return &ClientEndpoint{Replica: r, Coordinator: c, DefaultLeaseMS: defaultLeaseMS}
}

func (e *ClientEndpoint) Lock(ctx context.Context, req *transport.LockRequest) (*transport.QuorumReply, error) {
	lease := req.LeaseLengthMS
	if lease <= 0 {
		lease = e.DefaultLeaseMS
	}

	res, err := e.Coordinator.Lock(ctx, req.Key, req.Value, lease)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &transport.QuorumReply{W: res.W, Voted: res.Voted, Committed: res.Committed}, nil
}

func (e *ClientEndpoint) Release(ctx context.Context, req *transport.ClientReleaseRequest) (*transport.QuorumReply, error) {
	res, err := e.Coordinator.Release(ctx, req.Key, req.Value)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &transport.QuorumReply{W: res.W, Voted: res.Voted, Committed: res.Committed}, nil
}

func (e *ClientEndpoint) ExtendLease(ctx context.Context, req *transport.ClientExtendLeaseRequest) (*transport.QuorumReply, error) {
	extend := req.ExtendLengthMS
	if extend <= 0 {
		extend = e.DefaultLeaseMS
	}

	res, err := e.Coordinator.ExtendLease(ctx, req.Key, req.Value, extend)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &transport.QuorumReply{W: res.W, Voted: res.Voted, Committed: res.Committed}, nil
}

func (e *ClientEndpoint) DirtyRead(ctx context.Context, req *transport.DirtyReadRequest) (*transport.DirtyReadReply, error) {
	value, st := e.Replica.DirtyRead(req.Key)
	return &transport.DirtyReadReply{Status: st, Value: value}, nil
}

func (e *ClientEndpoint) SetNodes(ctx context.Context, req *transport.SetNodesRequest) (*transport.StatusReply, error) {
	// The broadcast set is the union of the new view: every node that
	// will be part of the cluster gets the same installation.
	cluster := replica.Membership{Primaries: req.Primaries, Replicas: req.Replicas}.Members()
	if err := e.Coordinator.SetNodes(ctx, cluster, req.Primaries, req.Replicas); err != nil {
		slog.Error("set_nodes broadcast failed", "error", err)
		return nil, status.Errorf(codes.Unavailable, "set_nodes: %v", err)
	}
	return &transport.StatusReply{Status: replica.StatusOK}, nil
}

func (e *ClientEndpoint) SetW(ctx context.Context, req *transport.SetWRequest) (*transport.StatusReply, error) {
	cluster := e.Replica.Nodes().Members()
	if err := e.Coordinator.SetW(ctx, cluster, req.W); err != nil {
		slog.Error("set_w broadcast failed", "error", err)
		return nil, status.Errorf(codes.Unavailable, "set_w: %v", err)
	}
	return &transport.StatusReply{Status: replica.StatusOK}, nil
}

func (e *ClientEndpoint) RemoveNode(ctx context.Context, req *transport.RemoveNodeRequest) (*transport.StatusReply, error) {
	if err := e.Coordinator.RemoveNode(ctx, req.NodeID, req.Reciprocal); err != nil {
		slog.Warn("remove_node partially applied", "removed", req.NodeID, "error", err)
	}
	return &transport.StatusReply{Status: replica.StatusOK}, nil
}

func (e *ClientEndpoint) GetNodes(ctx context.Context, req *transport.GetNodesRequest) (*transport.GetNodesReply, error) {
	view := e.Replica.Nodes()
	return &transport.GetNodesReply{Primaries: view.Primaries, Replicas: view.Replicas, W: view.W}, nil
}

func (e *ClientEndpoint) GetDebugState(ctx context.Context, req *transport.GetDebugStateRequest) (*transport.GetDebugStateReply, error) {
	st := e.Replica.DebugState()
	return &transport.GetDebugStateReply{
		Locks:        st.Locks,
		Entries:      st.Entries,
		LockSweepMS:  st.LockSweepInterval.Milliseconds(),
		LeaseSweepMS: st.LeaseSweepInterval.Milliseconds(),
	}, nil
}

func toGRPCError(err error) error {
	switch {
	case errors.Is(err, coordinator.ErrNoQuorum):
		return status.Error(codes.FailedPrecondition, "no quorum")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}
