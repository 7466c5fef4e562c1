package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/liveforeverx/locker/internal/coordinator"
	"github.com/liveforeverx/locker/internal/replica"
	"github.com/liveforeverx/locker/test/integration/helper"
	"github.com/stretchr/testify/require"
)

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestFreshLock(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	res, err := c.Primary(1).Coordinator.Lock(ctx(t), "a", []byte("1"), 5000)
	require.NoError(t, err)
	require.Equal(t, coordinator.Result{W: 2, Voted: 3, Committed: 3}, res)

	for _, n := range c.AllNodes() {
		value, st := n.Replica.DirtyRead("a")
		require.Equal(t, replica.StatusOK, st, "node %d", n.ID)
		require.Equal(t, []byte("1"), value, "node %d", n.ID)
	}
}

func TestContendedLock(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)
	lockCtx := ctx(t)

	type outcome struct {
		err error
	}
	results := make(chan outcome, 2)

	var wg sync.WaitGroup
	for i, n := range []*helper.Node{c.Primary(1), c.Primary(2)} {
		wg.Add(1)
		go func(n *helper.Node, value byte) {
			defer wg.Done()
			_, err := n.Coordinator.Lock(lockCtx, "b", []byte{value}, 5000)
			results <- outcome{err: err}
		}(n, byte(i+1))
	}
	wg.Wait()
	close(results)

	// Two contenders over three primaries: one of them must collect at
	// least two votes, so exactly one wins.
	var wins, noQuorum int
	for r := range results {
		switch {
		case r.err == nil:
			wins++
		case errors.Is(r.err, coordinator.ErrNoQuorum):
			noQuorum++
		default:
			t.Fatalf("unexpected error: %v", r.err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, noQuorum)
}

func TestManyContendersAtMostOneWinner(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	const attempts = 30
	nodes := c.PrimaryNodes()
	lockCtx := ctx(t)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := nodes[i%len(nodes)]
			_, err := n.Coordinator.Lock(lockCtx, "hot", []byte{byte(i)}, 5000)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, coordinator.ErrNoQuorum)
		}
	}
	// Vote splits can starve every contender, but two successes would
	// need two intersecting quorums to both hold the key's lock.
	require.LessOrEqual(t, wins, 1)
}

func TestReleaseWrongValue(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	_, err := c.Primary(1).Coordinator.Lock(ctx(t), "c", []byte("1"), 5000)
	require.NoError(t, err)

	_, err = c.Primary(2).Coordinator.Release(ctx(t), "c", []byte("2"))
	require.ErrorIs(t, err, coordinator.ErrNoQuorum)

	// The entry survives the failed release.
	value, st := c.Primary(3).Replica.DirtyRead("c")
	require.Equal(t, replica.StatusOK, st)
	require.Equal(t, []byte("1"), value)
}

func TestReleaseRemovesEverywhere(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	_, err := c.Primary(1).Coordinator.Lock(ctx(t), "c", []byte("1"), 5000)
	require.NoError(t, err)

	res, err := c.Primary(2).Coordinator.Release(ctx(t), "c", []byte("1"))
	require.NoError(t, err)
	require.Equal(t, 3, res.Committed)

	for _, n := range c.AllNodes() {
		_, st := n.Replica.DirtyRead("c")
		require.Equal(t, replica.StatusNotFound, st, "node %d", n.ID)
	}
}

func TestLeaseExpiry(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	_, err := c.Primary(1).Coordinator.Lock(ctx(t), "d", []byte("1"), 100)
	require.NoError(t, err)

	// An expired lease becomes unobservable within one lease-sweep
	// period after expiry.
	require.Eventually(t, func() bool {
		for _, n := range c.AllNodes() {
			if _, st := n.Replica.DirtyRead("d"); st != replica.StatusNotFound {
				return false
			}
		}
		return true
	}, 3*time.Second, 20*time.Millisecond)
}

func TestExtendLeaseKeepsEntryAlive(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	_, err := c.Primary(1).Coordinator.Lock(ctx(t), "e", []byte("9"), 150)
	require.NoError(t, err)

	// Keep renewing past the original expiry.
	for i := 0; i < 4; i++ {
		time.Sleep(100 * time.Millisecond)
		_, err := c.Primary(1).Coordinator.ExtendLease(ctx(t), "e", []byte("9"), 300)
		require.NoError(t, err)
	}

	value, st := c.Primary(2).Replica.DirtyRead("e")
	require.Equal(t, replica.StatusOK, st)
	require.Equal(t, []byte("9"), value)
}

func TestReplicaCatchUpViaExtendLease(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	_, err := c.Primary(1).Coordinator.Lock(ctx(t), "e", []byte("9"), 5000)
	require.NoError(t, err)

	// The late joiner has no entry for "e" yet.
	late := c.AddReplica(100)
	_, st := late.Replica.DirtyRead("e")
	require.Equal(t, replica.StatusNotFound, st)

	// Extending doubles as the install mechanism.
	res, err := c.Primary(1).Coordinator.ExtendLease(ctx(t), "e", []byte("9"), 5000)
	require.NoError(t, err)
	require.Equal(t, 4, res.Committed)

	value, st := late.Replica.DirtyRead("e")
	require.Equal(t, replica.StatusOK, st)
	require.Equal(t, []byte("9"), value)
}

func TestStaleLockCleanup(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	// Phase 1 succeeds on every primary, then the coordinator dies
	// before phase 2.
	const abandonedTag = 777
	for _, n := range c.PrimaryNodes() {
		require.Equal(t, replica.StatusOK, n.Replica.GetWriteLock("f", replica.ExpectAbsent(), abandonedTag))
	}

	lockCtx := ctx(t)
	_, err := c.Primary(1).Coordinator.Lock(lockCtx, "f", []byte("1"), 5000)
	require.ErrorIs(t, err, coordinator.ErrNoQuorum)

	// The lock sweeper frees the key within its TTL plus one sweep.
	require.Eventually(t, func() bool {
		_, err := c.Primary(1).Coordinator.Lock(lockCtx, "f", []byte("1"), 5000)
		return err == nil
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRemoveNodeReciprocal(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	require.NoError(t, c.Primary(1).Coordinator.RemoveNode(ctx(t), 2, false))

	view := c.Primary(1).Replica.Nodes()
	require.NotContains(t, view.Primaries, uint64(2))

	// The removed node dropped the caller in return, exactly once.
	view = c.Primary(2).Replica.Nodes()
	require.NotContains(t, view.Primaries, uint64(1))
	require.Contains(t, view.Primaries, uint64(3))
}

func TestClientServiceAgainstCluster(t *testing.T) {
	c := helper.NewCluster(t, 3, 0, nil)

	client := c.Primary(1).Client

	reply, err := client.Lock(ctx(t), "g", []byte("7"), 5000)
	require.NoError(t, err)
	require.Equal(t, 2, reply.W)
	require.Equal(t, 3, reply.Voted)
	require.Equal(t, 3, reply.Committed)

	// Dirty read against a different node's client surface.
	read, err := c.Primary(3).Client.DirtyRead(ctx(t), "g")
	require.NoError(t, err)
	require.Equal(t, replica.StatusOK, read.Status)
	require.Equal(t, []byte("7"), read.Value)

	nodes, err := client.GetNodes(ctx(t))
	require.NoError(t, err)
	require.Equal(t, 2, nodes.W)
	require.Len(t, nodes.Primaries, 3)

	debug, err := client.GetDebugState(ctx(t))
	require.NoError(t, err)
	require.Len(t, debug.Entries, 1)
}
