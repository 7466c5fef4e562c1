package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/liveforeverx/locker/internal/replica"
	"github.com/stretchr/testify/require"
)

var errUnreachable = errors.New("unreachable")

func newTestCoordinator(t *testing.T, primaries, replicas map[uint64]string, w int, peers map[string]*fakePeer) *Coordinator {
	t.Helper()

	local := replica.New(replica.Config{
		NodeID:    1,
		Primaries: primaries,
		Replicas:  replicas,
		W:         w,
	})
	local.Start()
	t.Cleanup(local.Stop)

	return New(local, &fakeSource{peers: peers}, 100*time.Millisecond)
}

func threePrimaries() (map[uint64]string, map[string]*fakePeer) {
	primaries := map[uint64]string{1: "n1", 2: "n2", 3: "n3"}
	peers := map[string]*fakePeer{
		"n1": {},
		"n2": {},
		"n3": {},
	}
	return primaries, peers
}

func TestLock_FullQuorum(t *testing.T) {
	primaries, peers := threePrimaries()
	c := newTestCoordinator(t, primaries, nil, 2, peers)

	res, err := c.Lock(context.Background(), "a", []byte("v"), 5000)
	require.NoError(t, err)
	require.Equal(t, Result{W: 2, Voted: 3, Committed: 3}, res)

	for _, p := range peers {
		require.Len(t, p.lockTags, 1)
		require.Len(t, p.writeTags, 1)
		require.Equal(t, p.lockTags[0], p.writeTags[0])
	}
}

func TestLock_NoQuorumReleasesLocks(t *testing.T) {
	primaries, peers := threePrimaries()
	peers["n2"].lockStatus = replica.StatusAlreadyLocked
	peers["n3"].lockStatus = replica.StatusNotExpectedValue

	c := newTestCoordinator(t, primaries, nil, 2, peers)

	_, err := c.Lock(context.Background(), "a", []byte("v"), 5000)
	require.ErrorIs(t, err, ErrNoQuorum)

	// The lone granted lock is released best-effort on every primary.
	for _, p := range peers {
		require.Len(t, p.released(), 1)
		require.Empty(t, p.writeTags)
	}
}

func TestLock_UnreachablePrimaryStillReachesQuorum(t *testing.T) {
	primaries := map[uint64]string{1: "n1", 2: "n2", 3: "gone"}
	peers := map[string]*fakePeer{"n1": {}, "n2": {}}

	c := newTestCoordinator(t, primaries, nil, 2, peers)

	res, err := c.Lock(context.Background(), "a", []byte("v"), 5000)
	require.NoError(t, err)
	require.Equal(t, Result{W: 2, Voted: 2, Committed: 2}, res)
}

func TestLock_PartialCommitIsReportedNotFailed(t *testing.T) {
	primaries, peers := threePrimaries()
	peers["n3"].WriteFn = func(ctx context.Context, tag uint64, key string, value []byte, leaseLengthMS int64) (replica.Status, error) {
		return 0, errUnreachable
	}

	c := newTestCoordinator(t, primaries, nil, 2, peers)

	res, err := c.Lock(context.Background(), "a", []byte("v"), 5000)
	require.NoError(t, err)
	require.Equal(t, Result{W: 2, Voted: 3, Committed: 2}, res)
}

func TestLock_Phase2IncludesReplicas(t *testing.T) {
	primaries := map[uint64]string{1: "n1", 2: "n2", 3: "n3"}
	replicas := map[uint64]string{9: "r9"}
	peers := map[string]*fakePeer{"n1": {}, "n2": {}, "n3": {}, "r9": {}}

	c := newTestCoordinator(t, primaries, replicas, 2, peers)

	res, err := c.Lock(context.Background(), "a", []byte("v"), 5000)
	require.NoError(t, err)
	require.Equal(t, Result{W: 2, Voted: 3, Committed: 4}, res)

	// Replicas never vote in phase 1.
	require.Empty(t, peers["r9"].lockTags)
	require.Len(t, peers["r9"].writeTags, 1)
}

func TestRelease_WrongValueLosesQuorum(t *testing.T) {
	primaries, peers := threePrimaries()
	for _, p := range peers {
		p.lockStatus = replica.StatusNotExpectedValue
	}

	c := newTestCoordinator(t, primaries, nil, 2, peers)

	_, err := c.Release(context.Background(), "a", []byte("wrong"))
	require.ErrorIs(t, err, ErrNoQuorum)
}

func TestRelease_FullQuorum(t *testing.T) {
	primaries, peers := threePrimaries()
	c := newTestCoordinator(t, primaries, nil, 2, peers)

	res, err := c.Release(context.Background(), "a", []byte("v"))
	require.NoError(t, err)
	require.Equal(t, Result{W: 2, Voted: 3, Committed: 3}, res)
}

func TestExtendLease_CleansUpLocksOnFailedPhase2(t *testing.T) {
	primaries, peers := threePrimaries()
	peers["n3"].ExtendLeaseFn = func(ctx context.Context, tag uint64, key string, value []byte, extendLengthMS int64) (replica.Status, error) {
		return replica.StatusNotOwner, nil
	}

	c := newTestCoordinator(t, primaries, nil, 2, peers)

	res, err := c.ExtendLease(context.Background(), "a", []byte("v"), 5000)
	require.NoError(t, err)
	require.Equal(t, Result{W: 2, Voted: 3, Committed: 2}, res)

	// Only the failed member gets the explicit lock release.
	require.Len(t, peers["n3"].released(), 1)
	require.Empty(t, peers["n1"].released())
	require.Empty(t, peers["n2"].released())
}

func TestTagsAreUniquePerAttempt(t *testing.T) {
	primaries, peers := threePrimaries()
	c := newTestCoordinator(t, primaries, nil, 2, peers)

	_, err := c.Lock(context.Background(), "a", []byte("v"), 5000)
	require.NoError(t, err)
	_, err = c.Lock(context.Background(), "b", []byte("v"), 5000)
	require.NoError(t, err)

	tags := peers["n1"].lockTags
	require.Len(t, tags, 2)
	require.NotEqual(t, tags[0], tags[1])
}

func TestLock_SlowPeerCountsAsNonOK(t *testing.T) {
	primaries, peers := threePrimaries()
	peers["n1"].GetWriteLockFn = func(ctx context.Context, key string, expected replica.Expected, tag uint64) (replica.Status, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	peers["n2"].GetWriteLockFn = peers["n1"].GetWriteLockFn

	c := newTestCoordinator(t, primaries, nil, 2, peers)

	start := time.Now()
	_, err := c.Lock(context.Background(), "a", []byte("v"), 5000)
	require.ErrorIs(t, err, ErrNoQuorum)

	// The attempt is bounded by the per-call deadline, not by the slow
	// peers themselves.
	require.Less(t, time.Since(start), time.Second)
}
