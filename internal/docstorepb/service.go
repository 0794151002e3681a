package docstorepb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "roomchat.docstore.DocStore"

const (
	DocStore_OpenSession_FullMethodName        = "/" + ServiceName + "/OpenSession"
	DocStore_Ping_FullMethodName               = "/" + ServiceName + "/Ping"
	DocStore_ReadRoom_FullMethodName           = "/" + ServiceName + "/ReadRoom"
	DocStore_CreateRoomIfAbsent_FullMethodName = "/" + ServiceName + "/CreateRoomIfAbsent"
	DocStore_Append_FullMethodName             = "/" + ServiceName + "/Append"
	DocStore_UpdateMessage_FullMethodName      = "/" + ServiceName + "/UpdateMessage"
	DocStore_ExportRoom_FullMethodName         = "/" + ServiceName + "/ExportRoom"
	DocStore_Watch_FullMethodName              = "/" + ServiceName + "/Watch"
)

// DocStoreClient is the client API for the DocStore service.
type DocStoreClient interface {
	OpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	ReadRoom(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateRoomIfAbsent(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Append(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ExportRoom(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Watch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type docStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewDocStoreClient(cc grpc.ClientConnInterface) DocStoreClient {
	return &docStoreClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *docStoreClient) OpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, DocStore_OpenSession_FullMethodName, in, opts...)
}

func (c *docStoreClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, DocStore_Ping_FullMethodName, in, opts...)
}

func (c *docStoreClient) ReadRoom(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, DocStore_ReadRoom_FullMethodName, in, opts...)
}

func (c *docStoreClient) CreateRoomIfAbsent(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, DocStore_CreateRoomIfAbsent_FullMethodName, in, opts...)
}

func (c *docStoreClient) Append(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, DocStore_Append_FullMethodName, in, opts...)
}

func (c *docStoreClient) UpdateMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, DocStore_UpdateMessage_FullMethodName, in, opts...)
}

func (c *docStoreClient) ExportRoom(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, DocStore_ExportRoom_FullMethodName, in, opts...)
}

func (c *docStoreClient) Watch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &DocStore_ServiceDesc.Streams[0], DocStore_Watch_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// DocStoreServer is the server API for the DocStore service.
type DocStoreServer interface {
	OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	ReadRoom(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateRoomIfAbsent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Append(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateMessage(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	ExportRoom(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error
}

// UnimplementedDocStoreServer can be embedded to have forward compatible implementations.
type UnimplementedDocStoreServer struct{}

func (UnimplementedDocStoreServer) OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method OpenSession not implemented")
}
func (UnimplementedDocStoreServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedDocStoreServer) ReadRoom(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ReadRoom not implemented")
}
func (UnimplementedDocStoreServer) CreateRoomIfAbsent(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateRoomIfAbsent not implemented")
}
func (UnimplementedDocStoreServer) Append(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Append not implemented")
}
func (UnimplementedDocStoreServer) UpdateMessage(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateMessage not implemented")
}
func (UnimplementedDocStoreServer) ExportRoom(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ExportRoom not implemented")
}
func (UnimplementedDocStoreServer) Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method Watch not implemented")
}

func RegisterDocStoreServer(s grpc.ServiceRegistrar, srv DocStoreServer) {
	s.RegisterService(&DocStore_ServiceDesc, srv)
}

func unary[Req any](fullMethod string, call func(DocStoreServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DocStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DocStoreServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _DocStore_Watch_Handler(srv any, stream grpc.ServerStream) error {
	m := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(DocStoreServer).Watch(m, &grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

// DocStore_ServiceDesc is the grpc.ServiceDesc for the DocStore service.
var DocStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "OpenSession",
			Handler: unary(DocStore_OpenSession_FullMethodName, func(s DocStoreServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.OpenSession(ctx, in)
			}),
		},
		{
			MethodName: "Ping",
			Handler: unary(DocStore_Ping_FullMethodName, func(s DocStoreServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.Ping(ctx, in)
			}),
		},
		{
			MethodName: "ReadRoom",
			Handler: unary(DocStore_ReadRoom_FullMethodName, func(s DocStoreServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return s.ReadRoom(ctx, in)
			}),
		},
		{
			MethodName: "CreateRoomIfAbsent",
			Handler: unary(DocStore_CreateRoomIfAbsent_FullMethodName, func(s DocStoreServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.CreateRoomIfAbsent(ctx, in)
			}),
		},
		{
			MethodName: "Append",
			Handler: unary(DocStore_Append_FullMethodName, func(s DocStoreServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.Append(ctx, in)
			}),
		},
		{
			MethodName: "UpdateMessage",
			Handler: unary(DocStore_UpdateMessage_FullMethodName, func(s DocStoreServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.UpdateMessage(ctx, in)
			}),
		},
		{
			MethodName: "ExportRoom",
			Handler: unary(DocStore_ExportRoom_FullMethodName, func(s DocStoreServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return s.ExportRoom(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       _DocStore_Watch_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "internal/docstorepb/docstore.proto",
}
