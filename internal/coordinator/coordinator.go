package coordinator

import (
	"context"
	"log/slog"
	"time"

	"github.com/liveforeverx/locker/internal/metrics"
	"github.com/liveforeverx/locker/internal/replica"
	"go.etcd.io/etcd/pkg/v3/idutil"
)

// DefaultCallTimeout bounds every fan-out RPC. A member that has not
// answered within it counts as a non-OK vote.
const DefaultCallTimeout = time.Second

// Coordinator drives client operations through the two-phase quorum
// protocol: phase 1 reserves a per-key write-lock on the primaries, phase
// 2 broadcasts the effect to primaries and replicas. Any node can
// coordinate; the membership view is read from the local replica at the
// start of each attempt. Unlike the replica, the coordinator is fully
// concurrent and shares nothing across calls except the tag generator.
type Coordinator struct {
	local       *replica.Replica
	peers       PeerSource
	tags        *idutil.Generator
	callTimeout time.Duration
}

// Result reports a successful coordinated operation: the quorum size the
// attempt ran against, the phase-1 OK votes and the phase-2 OK commits.
// Partial phase-2 success is data, not an error; any quorum-observable
// successor will see the committed entries.
type Result struct {
	W         int
	Voted     int
	Committed int
}

func New(local *replica.Replica, peers PeerSource, callTimeout time.Duration) *Coordinator {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Coordinator{
		local: local,
		peers: peers,
		// Tags must stay unique cluster-wide across restarts; the
		// generator folds the node id and boot time into every id.
		tags:        idutil.NewGenerator(uint16(local.NodeID()), time.Now()),
		callTimeout: callTimeout,
	}
}

// Lock creates key with value if it is absent on a write quorum, granting
// a lease of leaseLengthMS. The phase-1 precondition is the NOT_FOUND
// sentinel, so an existing key fails the vote on that node.
func (c *Coordinator) Lock(ctx context.Context, key string, value []byte, leaseLengthMS int64) (Result, error) {
	view := c.local.Nodes()
	tag := c.tags.Next()

	votes := c.broadcast(ctx, "get_write_lock", view.Primaries, func(ctx context.Context, p Peer) (replica.Status, error) {
		return p.GetWriteLock(ctx, key, replica.ExpectAbsent(), tag)
	})

	voted := countOK(votes)
	if voted < view.W {
		c.rollback(ctx, view.Primaries, tag)
		metrics.CoordinatorOpsTotal.WithLabelValues("lock", "no_quorum").Inc()
		slog.Debug("lock attempt lost quorum", "key", key, "tag", tag, "voted", voted, "w", view.W)
		return Result{}, ErrNoQuorum
	}

	commits := c.broadcast(ctx, "write", view.Members(), func(ctx context.Context, p Peer) (replica.Status, error) {
		return p.Write(ctx, tag, key, value, leaseLengthMS)
	})

	metrics.CoordinatorOpsTotal.WithLabelValues("lock", "ok").Inc()
	return Result{W: view.W, Voted: voted, Committed: countOK(commits)}, nil
}

// Release deletes key after proving ownership of value on a write quorum.
func (c *Coordinator) Release(ctx context.Context, key string, value []byte) (Result, error) {
	view := c.local.Nodes()
	tag := c.tags.Next()

	votes := c.broadcast(ctx, "get_write_lock", view.Primaries, func(ctx context.Context, p Peer) (replica.Status, error) {
		return p.GetWriteLock(ctx, key, replica.ExpectValue(value), tag)
	})

	voted := countOK(votes)
	if voted < view.W {
		c.rollback(ctx, view.Primaries, tag)
		metrics.CoordinatorOpsTotal.WithLabelValues("release", "no_quorum").Inc()
		slog.Debug("release attempt lost quorum", "key", key, "tag", tag, "voted", voted, "w", view.W)
		return Result{}, ErrNoQuorum
	}

	commits := c.broadcast(ctx, "release", view.Members(), func(ctx context.Context, p Peer) (replica.Status, error) {
		return p.Release(ctx, key, value, tag)
	})

	metrics.CoordinatorOpsTotal.WithLabelValues("release", "ok").Inc()
	return Result{W: view.W, Voted: voted, Committed: countOK(commits)}, nil
}

// ExtendLease installs a fresh lease of extendLengthMS for key on every
// member, proving ownership of value on a write quorum first. On replicas
// with no entry yet this doubles as the install path for late joiners.
func (c *Coordinator) ExtendLease(ctx context.Context, key string, value []byte, extendLengthMS int64) (Result, error) {
	view := c.local.Nodes()
	tag := c.tags.Next()

	votes := c.broadcast(ctx, "get_write_lock", view.Primaries, func(ctx context.Context, p Peer) (replica.Status, error) {
		return p.GetWriteLock(ctx, key, replica.ExpectValue(value), tag)
	})

	voted := countOK(votes)
	if voted < view.W {
		c.rollback(ctx, view.Primaries, tag)
		metrics.CoordinatorOpsTotal.WithLabelValues("extend_lease", "no_quorum").Inc()
		slog.Debug("extend attempt lost quorum", "key", key, "tag", tag, "voted", voted, "w", view.W)
		return Result{}, ErrNoQuorum
	}

	commits := c.broadcast(ctx, "extend_lease", view.Members(), func(ctx context.Context, p Peer) (replica.Status, error) {
		return p.ExtendLease(ctx, tag, key, value, extendLengthMS)
	})

	// Extending does not consume the phase-1 lock on members that failed
	// phase 2; release those explicitly rather than waiting for the lock
	// sweeper.
	failed := make(map[uint64]string)
	for _, v := range commits {
		if v.err != nil || v.status != replica.StatusOK {
			failed[v.id] = v.addr
		}
	}
	if len(failed) > 0 {
		c.rollback(ctx, failed, tag)
	}

	metrics.CoordinatorOpsTotal.WithLabelValues("extend_lease", "ok").Inc()
	return Result{W: view.W, Voted: voted, Committed: countOK(commits)}, nil
}

// rollback broadcasts release_write_lock best-effort; replies are only
// logged. Locks that slip through expire via the lock sweeper within its
// TTL anyway.
func (c *Coordinator) rollback(ctx context.Context, members map[uint64]string, tag uint64) {
	c.broadcast(ctx, "release_write_lock", members, func(ctx context.Context, p Peer) (replica.Status, error) {
		return p.ReleaseWriteLock(ctx, tag)
	})
}
