package rpc

import (
	"context"

	"google.golang.org/grpc"
)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HistoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("List", HistoryServer.List),
		unary("Search", HistoryServer.Search),
		unary("Pin", HistoryServer.Pin),
		unary("Delete", HistoryServer.Delete),
		unary("Clear", HistoryServer.Clear),
		unary("Copy", HistoryServer.Copy),
		unary("CopyText", HistoryServer.CopyText),
		unary("Paste", HistoryServer.Paste),
		unary("GetConfig", HistoryServer.GetConfig),
		unary("UpdateConfig", HistoryServer.UpdateConfig),
		unary("Status", HistoryServer.Status),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(WatchRequest)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(HistoryServer).Watch(in, stream)
			},
		},
	},
	Metadata: "pastecopy/v1/history",
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary builds the MethodDesc for one request/response call.
func unary[Req, Resp any](name string, call func(HistoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			hs := srv.(HistoryServer)
			if interceptor == nil {
				return call(hs, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(hs, ctx, req.(*Req))
			})
		},
	}
}
