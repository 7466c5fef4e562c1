package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/liveforeverx/locker/internal/metrics"
	"github.com/liveforeverx/locker/internal/replica"
)

// vote is one member's classified answer to a broadcast: its status on
// success, or the transport error that made it a non-OK vote.
type vote struct {
	id     uint64
	addr   string
	status replica.Status
	err    error
}

// broadcast fans the call out to every member concurrently and collects
// all answers. Each call runs under its own deadline; a member that times
// out or is unreachable yields a vote carrying the error. There are no
// per-node retries within an attempt.
func (c *Coordinator) broadcast(ctx context.Context, op string, members map[uint64]string, call func(context.Context, Peer) (replica.Status, error)) []vote {
	start := time.Now()

	results := make(chan vote, len(members))
	var wg sync.WaitGroup

	for id, addr := range members {
		wg.Add(1)
		go func(id uint64, addr string) {
			defer wg.Done()

			peer, err := c.peers.Peer(addr)
			if err != nil {
				results <- vote{id: id, addr: addr, err: err}
				return
			}

			callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
			defer cancel()

			status, err := call(callCtx, peer)
			if err != nil {
				slog.Debug("broadcast call failed", "op", op, "node_id", id, "error", err)
			}
			results <- vote{id: id, addr: addr, status: status, err: err}
		}(id, addr)
	}

	wg.Wait()
	close(results)

	votes := make([]vote, 0, len(members))
	for v := range results {
		votes = append(votes, v)
	}

	metrics.FanoutDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return votes
}

func countOK(votes []vote) int {
	n := 0
	for _, v := range votes {
		if v.err == nil && v.status == replica.StatusOK {
			n++
		}
	}
	return n
}
