package transport

import (
	"github.com/liveforeverx/locker/internal/replica"
)

// Peer service messages. Every request carries a reply; replica outcomes
// travel as Status values, not transport errors.

type GetWriteLockRequest struct {
	Key          string `json:"key"`
	Expected     []byte `json:"expected,omitempty"`
	ExpectAbsent bool   `json:"expect_absent,omitempty"`
	Tag          uint64 `json:"tag"`
}

func (r *GetWriteLockRequest) Precondition() replica.Expected {
	if r.ExpectAbsent {
		return replica.ExpectAbsent()
	}
	return replica.ExpectValue(r.Expected)
}

type ReleaseWriteLockRequest struct {
	Tag uint64 `json:"tag"`
}

type WriteRequest struct {
	Tag           uint64 `json:"tag"`
	Key           string `json:"key"`
	Value         []byte `json:"value"`
	LeaseLengthMS int64  `json:"lease_length_ms"`
}

type ReleaseRequest struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
	Tag   uint64 `json:"tag"`
}

type ExtendLeaseRequest struct {
	Tag            uint64 `json:"tag"`
	Key            string `json:"key"`
	Value          []byte `json:"value"`
	ExtendLengthMS int64  `json:"extend_length_ms"`
}

type DirtyReadRequest struct {
	Key string `json:"key"`
}

type SetNodesRequest struct {
	Primaries map[uint64]string `json:"primaries"`
	Replicas  map[uint64]string `json:"replicas"`
}

type SetWRequest struct {
	W int `json:"w"`
}

type RemoveNodeRequest struct {
	NodeID uint64 `json:"node_id"`
	// Reciprocal marks the one-hop callback from a removed node, which
	// must not trigger another callback.
	Reciprocal bool `json:"reciprocal,omitempty"`
}

type GetNodesRequest struct{}

type GetDebugStateRequest struct{}

type StatusReply struct {
	Status replica.Status `json:"status"`
}

type DirtyReadReply struct {
	Status replica.Status `json:"status"`
	Value  []byte         `json:"value,omitempty"`
}

type GetNodesReply struct {
	Primaries map[uint64]string `json:"primaries"`
	Replicas  map[uint64]string `json:"replicas"`
	W         int               `json:"w"`
}

type GetDebugStateReply struct {
	Locks        []replica.LockState  `json:"locks"`
	Entries      []replica.EntryState `json:"entries"`
	LockSweepMS  int64                `json:"lock_sweep_ms"`
	LeaseSweepMS int64                `json:"lease_sweep_ms"`
}

// Client service messages: the coordinated operations a node offers to
// clients, plus the administrative surface.

type LockRequest struct {
	Key           string `json:"key"`
	Value         []byte `json:"value"`
	LeaseLengthMS int64  `json:"lease_length_ms,omitempty"`
}

type ClientReleaseRequest struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

type ClientExtendLeaseRequest struct {
	Key            string `json:"key"`
	Value          []byte `json:"value"`
	ExtendLengthMS int64  `json:"extend_length_ms,omitempty"`
}

type QuorumReply struct {
	W         int `json:"w"`
	Voted     int `json:"voted"`
	Committed int `json:"committed"`
}
