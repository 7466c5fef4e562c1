package endpoint

import (
	"context"
	"log/slog"

	"github.com/liveforeverx/locker/internal/coordinator"
	"github.com/liveforeverx/locker/internal/replica"
	"github.com/liveforeverx/locker/internal/transport"
)

// PeerEndpoint exposes the local replica to the rest of the cluster. It is
// a thin shim: requests are decoded, handed to the serializer, and the
// status travels back as data.
type PeerEndpoint struct {
	Replica     *replica.Replica
	Coordinator *coordinator.Coordinator
}

func NewPeerEndpoint(r *replica.Replica, c *coordinator.Coordinator) *PeerEndpoint {
	return &PeerEndpoint{Replica: r, Coordinator: c}
}

func (e *PeerEndpoint) GetWriteLock(ctx context.Context, req *transport.GetWriteLockRequest) (*transport.StatusReply, error) {
	st := e.Replica.GetWriteLock(req.Key, req.Precondition(), req.Tag)
	return &transport.StatusReply{Status: st}, nil
}

func (e *PeerEndpoint) ReleaseWriteLock(ctx context.Context, req *transport.ReleaseWriteLockRequest) (*transport.StatusReply, error) {
	return &transport.StatusReply{Status: e.Replica.ReleaseWriteLock(req.Tag)}, nil
}

func (e *PeerEndpoint) Write(ctx context.Context, req *transport.WriteRequest) (*transport.StatusReply, error) {
	return &transport.StatusReply{Status: e.Replica.Write(req.Tag, req.Key, req.Value, req.LeaseLengthMS)}, nil
}

func (e *PeerEndpoint) Release(ctx context.Context, req *transport.ReleaseRequest) (*transport.StatusReply, error) {
	return &transport.StatusReply{Status: e.Replica.Release(req.Key, req.Value, req.Tag)}, nil
}

func (e *PeerEndpoint) ExtendLease(ctx context.Context, req *transport.ExtendLeaseRequest) (*transport.StatusReply, error) {
	return &transport.StatusReply{Status: e.Replica.ExtendLease(req.Tag, req.Key, req.Value, req.ExtendLengthMS)}, nil
}

func (e *PeerEndpoint) DirtyRead(ctx context.Context, req *transport.DirtyReadRequest) (*transport.DirtyReadReply, error) {
	value, st := e.Replica.DirtyRead(req.Key)
	return &transport.DirtyReadReply{Status: st, Value: value}, nil
}

func (e *PeerEndpoint) SetNodes(ctx context.Context, req *transport.SetNodesRequest) (*transport.StatusReply, error) {
	e.Replica.SetNodes(req.Primaries, req.Replicas)
	return &transport.StatusReply{Status: replica.StatusOK}, nil
}

func (e *PeerEndpoint) SetW(ctx context.Context, req *transport.SetWRequest) (*transport.StatusReply, error) {
	e.Replica.SetW(req.W)
	return &transport.StatusReply{Status: replica.StatusOK}, nil
}

func (e *PeerEndpoint) RemoveNode(ctx context.Context, req *transport.RemoveNodeRequest) (*transport.StatusReply, error) {
	if err := e.Coordinator.RemoveNode(ctx, req.NodeID, req.Reciprocal); err != nil {
		slog.Warn("remove_node partially applied", "removed", req.NodeID, "error", err)
	}
	return &transport.StatusReply{Status: replica.StatusOK}, nil
}

func (e *PeerEndpoint) GetNodes(ctx context.Context, req *transport.GetNodesRequest) (*transport.GetNodesReply, error) {
	view := e.Replica.Nodes()
	return &transport.GetNodesReply{Primaries: view.Primaries, Replicas: view.Replicas, W: view.W}, nil
}

func (e *PeerEndpoint) GetDebugState(ctx context.Context, req *transport.GetDebugStateRequest) (*transport.GetDebugStateReply, error) {
	st := e.Replica.DebugState()
	return &transport.GetDebugStateReply{
		Locks:        st.Locks,
		Entries:      st.Entries,
		LockSweepMS:  st.LockSweepInterval.Milliseconds(),
		LeaseSweepMS: st.LeaseSweepInterval.Milliseconds(),
	}, nil
}
