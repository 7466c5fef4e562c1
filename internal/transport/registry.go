package transport

import (
	"log/slog"

	"github.com/liveforeverx/locker/internal/coordinator"
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry caches one peer client per address. Concurrent coordinator
// fan-outs read it and add entries on first use, hence the concurrent map.
type Registry struct {
	clients *xsync.MapOf[string, *PeerClient]
}

func NewRegistry() *Registry {
	return &Registry{clients: xsync.NewMapOf[string, *PeerClient]()}
}

// Peer returns the cached client for addr, dialing on first use.
// Connections are lazy, so dialing an unreachable node succeeds here and
// fails at call time, where the per-call deadline classifies it.
func (r *Registry) Peer(addr string) (coordinator.Peer, error) {
	client, _ := r.clients.LoadOrCompute(addr, func() *PeerClient {
		c, err := DialPeer(addr)
		if err != nil {
			slog.Error("failed to dial peer", "addr", addr, "error", err)
			return nil
		}
		return c
	})
	if client == nil {
		r.clients.Delete(addr)
		return nil, ErrPeerUnavailable
	}
	return client, nil
}

// Drop closes and forgets the client for addr.
func (r *Registry) Drop(addr string) {
	if client, ok := r.clients.LoadAndDelete(addr); ok && client != nil {
		client.Close()
	}
}

// Close tears down every cached connection.
func (r *Registry) Close() {
	r.clients.Range(func(addr string, client *PeerClient) bool {
		if client != nil {
			client.Close()
		}
		r.clients.Delete(addr)
		return true
	})
}
