package transport

import (
	"context"

	"google.golang.org/grpc"
)

const PeerServiceName = "locker.Peer"

// PeerServer is the replica-facing RPC surface: the phase-1/phase-2
// operations the coordinator fans out, plus membership administration.
type PeerServer interface {
	GetWriteLock(ctx context.Context, req *GetWriteLockRequest) (*StatusReply, error)
	ReleaseWriteLock(ctx context.Context, req *ReleaseWriteLockRequest) (*StatusReply, error)
	Write(ctx context.Context, req *WriteRequest) (*StatusReply, error)
	Release(ctx context.Context, req *ReleaseRequest) (*StatusReply, error)
	ExtendLease(ctx context.Context, req *ExtendLeaseRequest) (*StatusReply, error)
	DirtyRead(ctx context.Context, req *DirtyReadRequest) (*DirtyReadReply, error)
	SetNodes(ctx context.Context, req *SetNodesRequest) (*StatusReply, error)
	SetW(ctx context.Context, req *SetWRequest) (*StatusReply, error)
	RemoveNode(ctx context.Context, req *RemoveNodeRequest) (*StatusReply, error)
	GetNodes(ctx context.Context, req *GetNodesRequest) (*GetNodesReply, error)
	GetDebugState(ctx context.Context, req *GetDebugStateRequest) (*GetDebugStateReply, error)
}

// unaryHandler adapts a typed method to the grpc.MethodDesc handler shape.
// The service descriptors are maintained by hand; with a JSON codec there
// is no protoc step to generate them.
func unaryHandler[Srv any, Req any](fullMethod string, invoke func(srv Srv, ctx context.Context, req *Req) (interface{}, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return invoke(srv.(Srv), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return invoke(srv.(Srv), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var PeerServiceDesc = grpc.ServiceDesc{
	ServiceName: PeerServiceName,
	HandlerType: (*PeerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetWriteLock",
			Handler: unaryHandler("/locker.Peer/GetWriteLock", func(srv PeerServer, ctx context.Context, req *GetWriteLockRequest) (interface{}, error) {
				return srv.GetWriteLock(ctx, req)
			}),
		},
		{
			MethodName: "ReleaseWriteLock",
			Handler: unaryHandler("/locker.Peer/ReleaseWriteLock", func(srv PeerServer, ctx context.Context, req *ReleaseWriteLockRequest) (interface{}, error) {
				return srv.ReleaseWriteLock(ctx, req)
			}),
		},
		{
			MethodName: "Write",
			Handler: unaryHandler("/locker.Peer/Write", func(srv PeerServer, ctx context.Context, req *WriteRequest) (interface{}, error) {
				return srv.Write(ctx, req)
			}),
		},
		{
			MethodName: "Release",
			Handler: unaryHandler("/locker.Peer/Release", func(srv PeerServer, ctx context.Context, req *ReleaseRequest) (interface{}, error) {
				return srv.Release(ctx, req)
			}),
		},
		{
			MethodName: "ExtendLease",
			Handler: unaryHandler("/locker.Peer/ExtendLease", func(srv PeerServer, ctx context.Context, req *ExtendLeaseRequest) (interface{}, error) {
				return srv.ExtendLease(ctx, req)
			}),
		},
		{
			MethodName: "DirtyRead",
			Handler: unaryHandler("/locker.Peer/DirtyRead", func(srv PeerServer, ctx context.Context, req *DirtyReadRequest) (interface{}, error) {
				return srv.DirtyRead(ctx, req)
			}),
		},
		{
			MethodName: "SetNodes",
			Handler: unaryHandler("/locker.Peer/SetNodes", func(srv PeerServer, ctx context.Context, req *SetNodesRequest) (interface{}, error) {
				return srv.SetNodes(ctx, req)
			}),
		},
		{
			MethodName: "SetW",
			Handler: unaryHandler("/locker.Peer/SetW", func(srv PeerServer, ctx context.Context, req *SetWRequest) (interface{}, error) {
				return srv.SetW(ctx, req)
			}),
		},
		{
			MethodName: "RemoveNode",
			Handler: unaryHandler("/locker.Peer/RemoveNode", func(srv PeerServer, ctx context.Context, req *RemoveNodeRequest) (interface{}, error) {
				return srv.RemoveNode(ctx, req)
			}),
		},
		{
			MethodName: "GetNodes",
			Handler: unaryHandler("/locker.Peer/GetNodes", func(srv PeerServer, ctx context.Context, req *GetNodesRequest) (interface{}, error) {
				return srv.GetNodes(ctx, req)
			}),
		},
		{
			MethodName: "GetDebugState",
			Handler: unaryHandler("/locker.Peer/GetDebugState", func(srv PeerServer, ctx context.Context, req *GetDebugStateRequest) (interface{}, error) {
				return srv.GetDebugState(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/transport/peer_service.go",
}
