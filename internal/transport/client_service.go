package transport

import (
	"context"

	"google.golang.org/grpc"
)

const ClientServiceName = "locker.Client"

// ClientServer is the public surface of a node: coordinated operations,
// local dirty reads and cluster administration.
type ClientServer interface {
	Lock(ctx context.Context, req *LockRequest) (*QuorumReply, error)
	Release(ctx context.Context, req *ClientReleaseRequest) (*QuorumReply, error)
	ExtendLease(ctx context.Context, req *ClientExtendLeaseRequest) (*QuorumReply, error)
	DirtyRead(ctx context.Context, req *DirtyReadRequest) (*DirtyReadReply, error)
	SetNodes(ctx context.Context, req *SetNodesRequest) (*StatusReply, error)
	SetW(ctx context.Context, req *SetWRequest) (*StatusReply, error)
	RemoveNode(ctx context.Context, req *RemoveNodeRequest) (*StatusReply, error)
	GetNodes(ctx context.Context, req *GetNodesRequest) (*GetNodesReply, error)
	GetDebugState(ctx context.Context, req *GetDebugStateRequest) (*GetDebugStateReply, error)
}

var ClientServiceDesc = grpc.ServiceDesc{
	ServiceName: ClientServiceName,
	HandlerType: (*ClientServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Lock",
			Handler: unaryHandler("/locker.Client/Lock", func(srv ClientServer, ctx context.Context, req *LockRequest) (interface{}, error) {
				return srv.Lock(ctx, req)
			}),
		},
		{
			MethodName: "Release",
			Handler: unaryHandler("/locker.Client/Release", func(srv ClientServer, ctx context.Context, req *ClientReleaseRequest) (interface{}, error) {
				return srv.Release(ctx, req)
			}),
		},
		{
			MethodName: "ExtendLease",
			Handler: unaryHandler("/locker.Client/ExtendLease", func(srv ClientServer, ctx context.Context, req *ClientExtendLeaseRequest) (interface{}, error) {
				return srv.ExtendLease(ctx, req)
			}),
		},
		{
			MethodName: "DirtyRead",
			Handler: unaryHandler("/locker.Client/DirtyRead", func(srv ClientServer, ctx context.Context, req *DirtyReadRequest) (interface{}, error) {
				return srv.DirtyRead(ctx, req)
			}),
		},
		{
			MethodName: "SetNodes",
			Handler: unaryHandler("/locker.Client/SetNodes", func(srv ClientServer, ctx context.Context, req *SetNodesRequest) (interface{}, error) {
				return srv.SetNodes(ctx, req)
			}),
		},
		{
			MethodName: "SetW",
			Handler: unaryHandler("/locker.Client/SetW", func(srv ClientServer, ctx context.Context, req *SetWRequest) (interface{}, error) {
				return srv.SetW(ctx, req)
			}),
		},
		{
			MethodName: "RemoveNode",
			Handler: unaryHandler("/locker.Client/RemoveNode", func(srv ClientServer, ctx context.Context, req *RemoveNodeRequest) (interface{}, error) {
				return srv.RemoveNode(ctx, req)
			}),
		},
		{
			MethodName: "GetNodes",
			Handler: unaryHandler("/locker.Client/GetNodes", func(srv ClientServer, ctx context.Context, req *GetNodesRequest) (interface{}, error) {
				return srv.GetNodes(ctx, req)
			}),
		},
		{
			MethodName: "GetDebugState",
			Handler: unaryHandler("/locker.Client/GetDebugState", func(srv ClientServer, ctx context.Context, req *GetDebugStateRequest) (interface{}, error) {
				return srv.GetDebugState(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/transport/client_service.go",
}
