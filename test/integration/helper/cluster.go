package helper

import (
	"sync"
	"testing"
	"time"

	"github.com/liveforeverx/locker/internal/coordinator"
	"github.com/liveforeverx/locker/internal/logging"
	"github.com/liveforeverx/locker/internal/replica"
	"github.com/liveforeverx/locker/internal/transport"
	"github.com/liveforeverx/locker/internal/transport/endpoint"
	"github.com/stretchr/testify/require"
)

// Config tightens the protocol timings so scenarios that wait for
// sweepers finish in a few hundred milliseconds instead of seconds.
type Config struct {
	W                  int
	LockTTL            time.Duration
	LockSweepInterval  time.Duration
	LeaseSweepInterval time.Duration
	CallTimeout        time.Duration
	DefaultLeaseMS     int64
}

var DefaultConfig = Config{
	W:                  2,
	LockTTL:            300 * time.Millisecond,
	LockSweepInterval:  100 * time.Millisecond,
	LeaseSweepInterval: 200 * time.Millisecond,
	CallTimeout:        500 * time.Millisecond,
	DefaultLeaseMS:     2000,
}

var initOnce sync.Once

// Node is one fully wired in-process member: replica, coordinator and
// both gRPC servers on loopback ports.
type Node struct {
	ID          uint64
	Replica     *replica.Replica
	Coordinator *coordinator.Coordinator
	Registry    *transport.Registry
	Service     *transport.Service
	Client      *transport.Client
	PeerAddr    string
	ClientAddr  string
}

type Cluster struct {
	t   *testing.T
	cfg Config

	primaries map[uint64]*Node
	replicas  map[uint64]*Node
}

// NewCluster starts nPrimaries voting nodes and nReplicas non-voting
// nodes, then installs the membership view on every one of them.
func NewCluster(t *testing.T, nPrimaries, nReplicas int, cfg *Config) *Cluster {
	initOnce.Do(func() {
		logging.Init("error")
	})

	actual := DefaultConfig
	if cfg != nil {
		actual = *cfg
	}

	c := &Cluster{
		t:         t,
		cfg:       actual,
		primaries: make(map[uint64]*Node),
		replicas:  make(map[uint64]*Node),
	}

	for i := 0; i < nPrimaries; i++ {
		id := uint64(i + 1)
		c.primaries[id] = c.startNode(id)
	}
	for i := 0; i < nReplicas; i++ {
		id := uint64(100 + i)
		c.replicas[id] = c.startNode(id)
	}

	c.InstallMembership()
	return c
}

func (c *Cluster) startNode(id uint64) *Node {
	rep := replica.New(replica.Config{
		NodeID:             id,
		W:                  c.cfg.W,
		LockTTL:            c.cfg.LockTTL,
		LockSweepInterval:  c.cfg.LockSweepInterval,
		LeaseSweepInterval: c.cfg.LeaseSweepInterval,
	})
	rep.Start()
	c.t.Cleanup(rep.Stop)

	registry := transport.NewRegistry()
	c.t.Cleanup(registry.Close)

	coord := coordinator.New(rep, registry, c.cfg.CallTimeout)

	svc := transport.NewService(transport.ServerConfig{
		Address:    "127.0.0.1",
		PeerPort:   "0",
		ClientPort: "0",
		Timeout:    time.Second,
	},
		endpoint.NewPeerEndpoint(rep, coord),
		endpoint.NewClientEndpoint(rep, coord, c.cfg.DefaultLeaseMS),
	)

	peerLis, err := svc.StartPeerServer()
	require.NoError(c.t, err, "failed to start peer server for node %d", id)
	clientLis, err := svc.StartClientServer()
	require.NoError(c.t, err, "failed to start client server for node %d", id)
	c.t.Cleanup(svc.Stop)

	client, err := transport.DialClient(clientLis.Addr().String())
	require.NoError(c.t, err)
	c.t.Cleanup(func() { client.Close() })

	return &Node{
		ID:          id,
		Replica:     rep,
		Coordinator: coord,
		Registry:    registry,
		Service:     svc,
		Client:      client,
		PeerAddr:    peerLis.Addr().String(),
		ClientAddr:  clientLis.Addr().String(),
	}
}

// InstallMembership pushes the current primary/replica address maps and W
// onto every node.
func (c *Cluster) InstallMembership() {
	primaries := make(map[uint64]string, len(c.primaries))
	for id, n := range c.primaries {
		primaries[id] = n.PeerAddr
	}
	replicaAddrs := make(map[uint64]string, len(c.replicas))
	for id, n := range c.replicas {
		replicaAddrs[id] = n.PeerAddr
	}

	for _, n := range c.AllNodes() {
		n.Replica.SetNodes(primaries, replicaAddrs)
		n.Replica.SetW(c.cfg.W)
	}
}

// AddReplica starts a fresh non-voting node and re-installs membership
// cluster-wide, modeling a late join.
func (c *Cluster) AddReplica(id uint64) *Node {
	n := c.startNode(id)
	c.replicas[id] = n
	c.InstallMembership()
	return n
}

func (c *Cluster) Primary(id uint64) *Node {
	n, ok := c.primaries[id]
	require.True(c.t, ok, "no primary %d", id)
	return n
}

func (c *Cluster) Replica(id uint64) *Node {
	n, ok := c.replicas[id]
	require.True(c.t, ok, "no replica %d", id)
	return n
}

func (c *Cluster) AllNodes() []*Node {
	out := make([]*Node, 0, len(c.primaries)+len(c.replicas))
	for _, n := range c.primaries {
		out = append(out, n)
	}
	for _, n := range c.replicas {
		out = append(out, n)
	}
	return out
}

func (c *Cluster) PrimaryNodes() []*Node {
	out := make([]*Node, 0, len(c.primaries))
	for _, n := range c.primaries {
		out = append(out, n)
	}
	return out
}
