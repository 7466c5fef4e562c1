package replica

import (
	"sort"
	"time"
)

// LockState and EntryState are point-in-time copies of internal state for
// the debug RPC. Slices are sorted so repeated snapshots diff cleanly.
type LockState struct {
	Tag        uint64 `json:"tag"`
	Key        string `json:"key"`
	AcquiredMS int64  `json:"acquired_ms"`
}

type EntryState struct {
	Key           string `json:"key"`
	Value         []byte `json:"value"`
	LeaseExpiryMS int64  `json:"lease_expiry_ms"`
}

type DebugState struct {
	Locks              []LockState  `json:"locks"`
	Entries            []EntryState `json:"entries"`
	LockSweepInterval  time.Duration
	LeaseSweepInterval time.Duration
}

// DebugState snapshots the lock table and store contents.
func (r *Replica) DebugState() DebugState {
	var st DebugState
	r.do(func() {
		st.Locks = make([]LockState, 0, r.locks.len())
		for _, l := range r.locks.byTag {
			st.Locks = append(st.Locks, LockState{Tag: l.tag, Key: l.key, AcquiredMS: l.acquired})
		}

		st.Entries = make([]EntryState, 0, r.store.len())
		for key, e := range r.store.entries {
			st.Entries = append(st.Entries, EntryState{Key: key, Value: e.value, LeaseExpiryMS: e.leaseExpiry})
		}
	})

	sort.Slice(st.Locks, func(i, j int) bool { return st.Locks[i].Tag < st.Locks[j].Tag })
	sort.Slice(st.Entries, func(i, j int) bool { return st.Entries[i].Key < st.Entries[j].Key })

	st.LockSweepInterval = r.cfg.LockSweepInterval
	st.LeaseSweepInterval = r.cfg.LeaseSweepInterval
	return st
}
