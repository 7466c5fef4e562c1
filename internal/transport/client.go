package transport

import (
	"context"
	"time"

	"github.com/liveforeverx/locker/internal/replica"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

func dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)
}

func invokeUnary[Reply any](ctx context.Context, conn *grpc.ClientConn, method string, req interface{}) (*Reply, error) {
	out := new(Reply)
	if err := conn.Invoke(ctx, method, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// PeerClient talks to one node's peer service. It implements the
// coordinator's Peer port.
type PeerClient struct {
	conn *grpc.ClientConn
}

func DialPeer(addr string) (*PeerClient, error) {
	conn, err := dial(addr)
	if err != nil {
		return nil, err
	}
	return &PeerClient{conn: conn}, nil
}

func (c *PeerClient) Close() error {
	return c.conn.Close()
}

func (c *PeerClient) GetWriteLock(ctx context.Context, key string, expected replica.Expected, tag uint64) (replica.Status, error) {
	req := &GetWriteLockRequest{Key: key, Tag: tag}
	if expected.Present {
		req.Expected = expected.Value
	} else {
		req.ExpectAbsent = true
	}

	reply, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Peer/GetWriteLock", req)
	if err != nil {
		return 0, err
	}
	return reply.Status, nil
}

func (c *PeerClient) ReleaseWriteLock(ctx context.Context, tag uint64) (replica.Status, error) {
	reply, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Peer/ReleaseWriteLock", &ReleaseWriteLockRequest{Tag: tag})
	if err != nil {
		return 0, err
	}
	return reply.Status, nil
}

func (c *PeerClient) Write(ctx context.Context, tag uint64, key string, value []byte, leaseLengthMS int64) (replica.Status, error) {
	req := &WriteRequest{Tag: tag, Key: key, Value: value, LeaseLengthMS: leaseLengthMS}
	reply, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Peer/Write", req)
	if err != nil {
		return 0, err
	}
	return reply.Status, nil
}

func (c *PeerClient) Release(ctx context.Context, key string, value []byte, tag uint64) (replica.Status, error) {
	req := &ReleaseRequest{Key: key, Value: value, Tag: tag}
	reply, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Peer/Release", req)
	if err != nil {
		return 0, err
	}
	return reply.Status, nil
}

func (c *PeerClient) ExtendLease(ctx context.Context, tag uint64, key string, value []byte, extendLengthMS int64) (replica.Status, error) {
	req := &ExtendLeaseRequest{Tag: tag, Key: key, Value: value, ExtendLengthMS: extendLengthMS}
	reply, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Peer/ExtendLease", req)
	if err != nil {
		return 0, err
	}
	return reply.Status, nil
}

func (c *PeerClient) SetNodes(ctx context.Context, primaries, replicas map[uint64]string) error {
	_, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Peer/SetNodes", &SetNodesRequest{Primaries: primaries, Replicas: replicas})
	return err
}

func (c *PeerClient) SetW(ctx context.Context, w int) error {
	_, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Peer/SetW", &SetWRequest{W: w})
	return err
}

func (c *PeerClient) RemoveNode(ctx context.Context, nodeID uint64, reciprocal bool) error {
	_, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Peer/RemoveNode", &RemoveNodeRequest{NodeID: nodeID, Reciprocal: reciprocal})
	return err
}

// Client talks to a node's client service. The CLI and tests use it.
type Client struct {
	conn *grpc.ClientConn
}

func DialClient(addr string) (*Client, error) {
	conn, err := dial(addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Lock(ctx context.Context, key string, value []byte, leaseLengthMS int64) (*QuorumReply, error) {
	return invokeUnary[QuorumReply](ctx, c.conn, "/locker.Client/Lock", &LockRequest{Key: key, Value: value, LeaseLengthMS: leaseLengthMS})
}

func (c *Client) Release(ctx context.Context, key string, value []byte) (*QuorumReply, error) {
	return invokeUnary[QuorumReply](ctx, c.conn, "/locker.Client/Release", &ClientReleaseRequest{Key: key, Value: value})
}

func (c *Client) ExtendLease(ctx context.Context, key string, value []byte, extendLengthMS int64) (*QuorumReply, error) {
	return invokeUnary[QuorumReply](ctx, c.conn, "/locker.Client/ExtendLease", &ClientExtendLeaseRequest{Key: key, Value: value, ExtendLengthMS: extendLengthMS})
}

func (c *Client) DirtyRead(ctx context.Context, key string) (*DirtyReadReply, error) {
	return invokeUnary[DirtyReadReply](ctx, c.conn, "/locker.Client/DirtyRead", &DirtyReadRequest{Key: key})
}

func (c *Client) SetNodes(ctx context.Context, primaries, replicas map[uint64]string) error {
	_, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Client/SetNodes", &SetNodesRequest{Primaries: primaries, Replicas: replicas})
	return err
}

func (c *Client) SetW(ctx context.Context, w int) error {
	_, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Client/SetW", &SetWRequest{W: w})
	return err
}

func (c *Client) RemoveNode(ctx context.Context, nodeID uint64) error {
	_, err := invokeUnary[StatusReply](ctx, c.conn, "/locker.Client/RemoveNode", &RemoveNodeRequest{NodeID: nodeID})
	return err
}

func (c *Client) GetNodes(ctx context.Context) (*GetNodesReply, error) {
	return invokeUnary[GetNodesReply](ctx, c.conn, "/locker.Client/GetNodes", &GetNodesRequest{})
}

func (c *Client) GetDebugState(ctx context.Context) (*GetDebugStateReply, error) {
	return invokeUnary[GetDebugStateReply](ctx, c.conn, "/locker.Client/GetDebugState", &GetDebugStateRequest{})
}
