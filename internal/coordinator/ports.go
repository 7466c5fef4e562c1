package coordinator

import (
	"context"

	"github.com/liveforeverx/locker/internal/replica"
)

// Peer is the coordinator's view of one member's RPC surface. The real
// implementation lives in the transport package; tests substitute fakes.
type Peer interface {
	GetWriteLock(ctx context.Context, key string, expected replica.Expected, tag uint64) (replica.Status, error)
	ReleaseWriteLock(ctx context.Context, tag uint64) (replica.Status, error)
	Write(ctx context.Context, tag uint64, key string, value []byte, leaseLengthMS int64) (replica.Status, error)
	Release(ctx context.Context, key string, value []byte, tag uint64) (replica.Status, error)
	ExtendLease(ctx context.Context, tag uint64, key string, value []byte, extendLengthMS int64) (replica.Status, error)
	SetNodes(ctx context.Context, primaries, replicas map[uint64]string) error
	SetW(ctx context.Context, w int) error
	RemoveNode(ctx context.Context, nodeID uint64, reciprocal bool) error
}

// PeerSource resolves a member address to a Peer.
type PeerSource interface {
	Peer(addr string) (Peer, error)
}
