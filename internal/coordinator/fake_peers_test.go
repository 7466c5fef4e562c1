package coordinator

import (
	"context"
	"sync"

	"github.com/liveforeverx/locker/internal/replica"
)

// fakePeer records calls and answers with configurable statuses. The Fn
// fields override whole methods when a test needs more than a canned
// status.
type fakePeer struct {
	mu sync.Mutex

	lockStatus   replica.Status
	writeStatus  replica.Status
	releaseSt    replica.Status
	extendStatus replica.Status

	GetWriteLockFn func(ctx context.Context, key string, expected replica.Expected, tag uint64) (replica.Status, error)
	WriteFn        func(ctx context.Context, tag uint64, key string, value []byte, leaseLengthMS int64) (replica.Status, error)
	ExtendLeaseFn  func(ctx context.Context, tag uint64, key string, value []byte, extendLengthMS int64) (replica.Status, error)

	lockTags     []uint64
	writeTags    []uint64
	releasedTags []uint64
	extendTags   []uint64
}

func (p *fakePeer) GetWriteLock(ctx context.Context, key string, expected replica.Expected, tag uint64) (replica.Status, error) {
	if p.GetWriteLockFn != nil {
		return p.GetWriteLockFn(ctx, key, expected, tag)
	}
	p.mu.Lock()
	p.lockTags = append(p.lockTags, tag)
	p.mu.Unlock()
	return p.lockStatus, nil
}

func (p *fakePeer) ReleaseWriteLock(ctx context.Context, tag uint64) (replica.Status, error) {
	p.mu.Lock()
	p.releasedTags = append(p.releasedTags, tag)
	p.mu.Unlock()
	return replica.StatusOK, nil
}

func (p *fakePeer) Write(ctx context.Context, tag uint64, key string, value []byte, leaseLengthMS int64) (replica.Status, error) {
	if p.WriteFn != nil {
		return p.WriteFn(ctx, tag, key, value, leaseLengthMS)
	}
	p.mu.Lock()
	p.writeTags = append(p.writeTags, tag)
	p.mu.Unlock()
	return p.writeStatus, nil
}

func (p *fakePeer) Release(ctx context.Context, key string, value []byte, tag uint64) (replica.Status, error) {
	return p.releaseSt, nil
}

func (p *fakePeer) ExtendLease(ctx context.Context, tag uint64, key string, value []byte, extendLengthMS int64) (replica.Status, error) {
	if p.ExtendLeaseFn != nil {
		return p.ExtendLeaseFn(ctx, tag, key, value, extendLengthMS)
	}
	p.mu.Lock()
	p.extendTags = append(p.extendTags, tag)
	p.mu.Unlock()
	return p.extendStatus, nil
}

func (p *fakePeer) SetNodes(ctx context.Context, primaries, replicas map[uint64]string) error {
	return nil
}

func (p *fakePeer) SetW(ctx context.Context, w int) error {
	return nil
}

func (p *fakePeer) RemoveNode(ctx context.Context, nodeID uint64, reciprocal bool) error {
	return nil
}

func (p *fakePeer) released() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint64, len(p.releasedTags))
	copy(out, p.releasedTags)
	return out
}

// fakeSource resolves addresses to fake peers; unknown addresses are
// reported unreachable.
type fakeSource struct {
	peers map[string]*fakePeer
}

func (s *fakeSource) Peer(addr string) (Peer, error) {
	p, ok := s.peers[addr]
	if !ok {
		return nil, errUnreachable
	}
	return p, nil
}
