package replica

import (
	"bytes"
	"log/slog"
	"sync"
	"time"

	"github.com/liveforeverx/locker/internal/metrics"
)

const (
	DefaultLockTTL            = time.Second
	DefaultLockSweepInterval  = time.Second
	DefaultLeaseSweepInterval = 10 * time.Second
)

// Config carries the per-node settings of a replica.
type Config struct {
	NodeID    uint64
	Primaries map[uint64]string
	Replicas  map[uint64]string
	W         int

	LockTTL            time.Duration
	LockSweepInterval  time.Duration
	LeaseSweepInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.LockTTL <= 0 {
		c.LockTTL = DefaultLockTTL
	}
	if c.LockSweepInterval <= 0 {
		c.LockSweepInterval = DefaultLockSweepInterval
	}
	if c.LeaseSweepInterval <= 0 {
		c.LeaseSweepInterval = DefaultLeaseSweepInterval
	}
	if c.W < 1 {
		c.W = 1
	}
}

// Replica is the per-node state machine: the store, the write-lock table
// and the membership view, owned by a single serializer goroutine. Every
// operation runs to completion on that goroutine before the next one
// starts, so handlers and sweepers observe consistent snapshots without
// any locking.
type Replica struct {
	nodeID uint64
	cfg    Config

	store *storeTable
	locks *lockTable
	view  Membership

	inbox     chan func()
	stopCh    chan struct{}
	stoppedWg sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once

	// nowMS is swapped out by tests that need a deterministic clock.
	nowMS func() int64
}

func New(cfg Config) *Replica {
	cfg.applyDefaults()

	r := &Replica{
		nodeID: cfg.NodeID,
		cfg:    cfg,
		store:  newStoreTable(),
		locks:  newLockTable(),
		view: Membership{
			Primaries: cfg.Primaries,
			Replicas:  cfg.Replicas,
			W:         cfg.W,
		}.clone(),
		inbox:  make(chan func(), 128),
		stopCh: make(chan struct{}),
		nowMS:  func() int64 { return time.Now().UnixMilli() },
	}

	slog.Info("replica created",
		"node_id", cfg.NodeID,
		"w", r.view.W,
		"primaries", len(r.view.Primaries),
		"replicas", len(r.view.Replicas),
	)

	return r
}

// Start launches the serializer goroutine. The sweepers run on the same
// goroutine as request handlers; they are just periodic messages.
func (r *Replica) Start() {
	r.startOnce.Do(func() {
		r.stoppedWg.Add(1)
		go func() {
			defer r.stoppedWg.Done()
			r.run()
		}()
	})
}

func (r *Replica) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.stoppedWg.Wait()
		slog.Info("replica stopped", "node_id", r.nodeID)
	})
}

func (r *Replica) NodeID() uint64 {
	return r.nodeID
}

func (r *Replica) run() {
	lockTicker := time.NewTicker(r.cfg.LockSweepInterval)
	defer lockTicker.Stop()
	leaseTicker := time.NewTicker(r.cfg.LeaseSweepInterval)
	defer leaseTicker.Stop()

	slog.Debug("replica serializer started", "node_id", r.nodeID)

	for {
		select {
		case <-r.stopCh:
			slog.Debug("replica serializer stopping", "node_id", r.nodeID)
			return
		case fn := <-r.inbox:
			fn()
		case <-lockTicker.C:
			r.sweepLocks()
		case <-leaseTicker.C:
			r.sweepLeases()
		}
	}
}

// do runs fn on the serializer goroutine and waits for it to finish.
func (r *Replica) do(fn func()) {
	done := make(chan struct{})
	select {
	case r.inbox <- func() {
		fn()
		close(done)
	}:
	case <-r.stopCh:
		return
	}

	select {
	case <-done:
	case <-r.stopCh:
	}
}

// GetWriteLock is phase 1 of a coordinated write: reserve the key if it is
// unlocked and its stored value matches the precondition.
func (r *Replica) GetWriteLock(key string, expected Expected, tag uint64) Status {
	st := StatusOK
	r.do(func() {
		st = r.handleGetWriteLock(key, expected, tag)
	})
	metrics.ReplicaRequestsTotal.WithLabelValues("get_write_lock", st.String()).Inc()
	return st
}

func (r *Replica) handleGetWriteLock(key string, expected Expected, tag uint64) Status {
	if r.locks.isLocked(key) {
		return StatusAlreadyLocked
	}

	entry, found := r.store.get(key)
	if !expected.matches(entry, found) {
		return StatusNotExpectedValue
	}

	r.locks.acquire(tag, key, expected, r.nowMS())
	metrics.LocksActive.Set(float64(r.locks.len()))

	slog.Debug("write lock granted", "node_id", r.nodeID, "key", key, "tag", tag)
	return StatusOK
}

// ReleaseWriteLock drops the lock with the given tag. A missing lock
// reports StatusLockExpired; callers treat both outcomes as released.
func (r *Replica) ReleaseWriteLock(tag uint64) Status {
	st := StatusOK
	r.do(func() {
		if !r.locks.release(tag) {
			st = StatusLockExpired
			return
		}
		metrics.LocksActive.Set(float64(r.locks.len()))
	})
	metrics.ReplicaRequestsTotal.WithLabelValues("release_write_lock", st.String()).Inc()
	return st
}

// Write is the phase-2 commit. The replica trusts the coordinator to have
// secured a quorum and performs no local precondition check: the entry is
// installed unconditionally and the phase-1 lock consumed in the same step.
func (r *Replica) Write(tag uint64, key string, value []byte, leaseLengthMS int64) Status {
	r.do(func() {
		r.store.put(key, value, r.nowMS()+leaseLengthMS)
		r.locks.release(tag)
		metrics.StoreKeys.Set(float64(r.store.len()))
		metrics.LocksActive.Set(float64(r.locks.len()))
		slog.Debug("entry committed", "node_id", r.nodeID, "key", key, "tag", tag)
	})
	metrics.ReplicaRequestsTotal.WithLabelValues("write", StatusOK.String()).Inc()
	return StatusOK
}

// Release deletes the entry for key when the stored value proves the
// caller's ownership, consuming the phase-1 lock with it.
func (r *Replica) Release(key string, value []byte, tag uint64) Status {
	st := StatusOK
	r.do(func() {
		st = r.handleRelease(key, value, tag)
	})
	metrics.ReplicaRequestsTotal.WithLabelValues("release", st.String()).Inc()
	return st
}

func (r *Replica) handleRelease(key string, value []byte, tag uint64) Status {
	entry, found := r.store.get(key)
	if !found {
		return StatusNotFound
	}
	if !bytes.Equal(entry.value, value) {
		return StatusNotOwner
	}

	r.store.delete(key)
	r.locks.release(tag)
	metrics.StoreKeys.Set(float64(r.store.len()))
	metrics.LocksActive.Set(float64(r.locks.len()))

	slog.Debug("entry released", "node_id", r.nodeID, "key", key, "tag", tag)
	return StatusOK
}

// ExtendLease installs a fresh absolute expiry of now + extendLengthMS.
// On a node with no entry the behavior splits: a replica creates the entry
// (extending doubles as the install path for late joiners), a primary
// reports StatusNotFound.
func (r *Replica) ExtendLease(tag uint64, key string, value []byte, extendLengthMS int64) Status {
	st := StatusOK
	r.do(func() {
		st = r.handleExtendLease(tag, key, value, extendLengthMS)
	})
	metrics.ReplicaRequestsTotal.WithLabelValues("extend_lease", st.String()).Inc()
	return st
}

func (r *Replica) handleExtendLease(tag uint64, key string, value []byte, extendLengthMS int64) Status {
	entry, found := r.store.get(key)
	if found {
		if !bytes.Equal(entry.value, value) {
			return StatusNotOwner
		}
		r.store.put(key, entry.value, r.nowMS()+extendLengthMS)
		r.locks.release(tag)
		metrics.LocksActive.Set(float64(r.locks.len()))
		return StatusOK
	}

	if !r.view.isReplica(r.nodeID) {
		return StatusNotFound
	}

	r.store.put(key, value, r.nowMS()+extendLengthMS)
	r.locks.release(tag)
	metrics.StoreKeys.Set(float64(r.store.len()))

	slog.Debug("entry installed via lease extension", "node_id", r.nodeID, "key", key)
	return StatusOK
}

// DirtyRead returns the locally stored value without any coordination.
// Leases are not consulted: an expired entry stays visible until the
// sweeper removes it.
func (r *Replica) DirtyRead(key string) ([]byte, Status) {
	var (
		value []byte
		st    = StatusOK
	)
	r.do(func() {
		entry, found := r.store.get(key)
		if !found {
			st = StatusNotFound
			return
		}
		value = entry.value
	})
	metrics.ReplicaRequestsTotal.WithLabelValues("dirty_read", st.String()).Inc()
	return value, st
}

// SetNodes replaces the primary and replica sets wholesale.
func (r *Replica) SetNodes(primaries, replicas map[uint64]string) {
	r.do(func() {
		r.view.Primaries = copyNodes(primaries)
		r.view.Replicas = copyNodes(replicas)
		slog.Info("membership replaced",
			"node_id", r.nodeID,
			"primaries", len(r.view.Primaries),
			"replicas", len(r.view.Replicas),
		)
	})
}

func (r *Replica) SetW(w int) {
	r.do(func() {
		if w < 1 {
			slog.Warn("rejecting quorum size below 1", "node_id", r.nodeID, "w", w)
			return
		}
		r.view.W = w
		slog.Info("quorum size changed", "node_id", r.nodeID, "w", w)
	})
}

// RemoveNode drops a node from the primary set.
func (r *Replica) RemoveNode(id uint64) {
	r.do(func() {
		delete(r.view.Primaries, id)
		slog.Info("node removed from primaries", "node_id", r.nodeID, "removed", id)
	})
}

// Nodes returns a copy of the current membership view.
func (r *Replica) Nodes() Membership {
	var view Membership
	r.do(func() {
		view = r.view.clone()
	})
	return view
}

func (r *Replica) sweepLocks() {
	now := r.nowMS()
	removed := r.locks.sweep(now, r.cfg.LockTTL.Milliseconds())

	metrics.SweepsTotal.WithLabelValues("lock").Inc()
	if removed > 0 {
		metrics.SweptTotal.WithLabelValues("lock").Add(float64(removed))
		metrics.LocksActive.Set(float64(r.locks.len()))
		slog.Debug("swept stale locks", "node_id", r.nodeID, "removed", removed)
	}
}

func (r *Replica) sweepLeases() {
	now := r.nowMS()
	// A key under an active write-lock is mid-rewrite; deleting it here
	// would make a racing phase-2 commit observable as missing.
	removed := r.store.sweep(now, r.locks.isLocked)

	metrics.SweepsTotal.WithLabelValues("lease").Inc()
	if removed > 0 {
		metrics.SweptTotal.WithLabelValues("lease").Add(float64(removed))
		metrics.StoreKeys.Set(float64(r.store.len()))
		slog.Debug("swept expired leases", "node_id", r.nodeID, "removed", removed)
	}
}
