package coordinator

import (
	"context"
	"fmt"
	"log/slog"
)

// SetNodes installs the given primary and replica sets on every node in
// cluster. Membership changes are administrative; no partial success is
// tolerated, a single failed node fails the whole call.
func (c *Coordinator) SetNodes(ctx context.Context, cluster map[uint64]string, primaries, replicas map[uint64]string) error {
	for id, addr := range cluster {
		peer, err := c.peers.Peer(addr)
		if err != nil {
			return fmt.Errorf("set_nodes on node %d: %w", id, err)
		}

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		err = peer.SetNodes(callCtx, primaries, replicas)
		cancel()
		if err != nil {
			return fmt.Errorf("set_nodes on node %d: %w", id, err)
		}
	}

	slog.Info("membership installed on cluster",
		"nodes", len(cluster),
		"primaries", len(primaries),
		"replicas", len(replicas),
	)
	return nil
}

// SetW installs a new quorum size on every node in cluster.
func (c *Coordinator) SetW(ctx context.Context, cluster map[uint64]string, w int) error {
	for id, addr := range cluster {
		peer, err := c.peers.Peer(addr)
		if err != nil {
			return fmt.Errorf("set_w on node %d: %w", id, err)
		}

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		err = peer.SetW(callCtx, w)
		cancel()
		if err != nil {
			return fmt.Errorf("set_w on node %d: %w", id, err)
		}
	}

	slog.Info("quorum size installed on cluster", "nodes", len(cluster), "w", w)
	return nil
}

// RemoveNode drops nodeID from the local primary set. Unless the call is
// itself the reciprocal hop, the removed node is asked once to remove
// this node in return; the flag stops the calls from ping-ponging.
func (c *Coordinator) RemoveNode(ctx context.Context, nodeID uint64, reciprocal bool) error {
	view := c.local.Nodes()
	addr, known := view.Primaries[nodeID]
	if !known {
		addr, known = view.Replicas[nodeID]
	}

	c.local.RemoveNode(nodeID)

	if reciprocal || !known {
		return nil
	}

	peer, err := c.peers.Peer(addr)
	if err != nil {
		return fmt.Errorf("reciprocal remove on node %d: %w", nodeID, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if err := peer.RemoveNode(callCtx, c.local.NodeID(), true); err != nil {
		return fmt.Errorf("reciprocal remove on node %d: %w", nodeID, err)
	}
	return nil
}
