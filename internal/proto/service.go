// Package proto holds the gRPC contract between the healthlog client and the
// remote store. Messages are protobuf well-known types, so no generated
// message code is needed; the service descriptor below follows the layout
// protoc-gen-go-grpc produces.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "healthlog.sync.HealthLogSync"

const (
	HealthLogSync_Ping_FullMethodName            = "/" + ServiceName + "/Ping"
	HealthLogSync_SignUp_FullMethodName          = "/" + ServiceName + "/SignUp"
	HealthLogSync_SignIn_FullMethodName          = "/" + ServiceName + "/SignIn"
	HealthLogSync_GetUser_FullMethodName         = "/" + ServiceName + "/GetUser"
	HealthLogSync_SignOut_FullMethodName         = "/" + ServiceName + "/SignOut"
	HealthLogSync_UploadHealthLog_FullMethodName = "/" + ServiceName + "/UploadHealthLog"
)

// Struct field names used on the wire.
const (
	FieldID               = "id"
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldAccessToken      = "access_token"
	FieldOwnerRemoteID    = "owner_remote_id"
	FieldEncryptedPayload = "encrypted_payload"
	FieldDeviceID         = "device_id"
)

// HealthLogSyncClient is the client API for the HealthLogSync service.
type HealthLogSyncClient interface {
	// Ping performs a cheap read on the remote store and returns the number
	// of rows it saw (0 or 1).
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetUser(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignOut(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	// UploadHealthLog stores one encrypted record and returns its remote id.
	UploadHealthLog(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type healthLogSyncClient struct {
	cc grpc.ClientConnInterface
}

func NewHealthLogSyncClient(cc grpc.ClientConnInterface) HealthLogSyncClient {
	return &healthLogSyncClient{cc}
}

func (c *healthLogSyncClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, HealthLogSync_Ping_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *healthLogSyncClient) SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HealthLogSync_SignUp_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *healthLogSyncClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HealthLogSync_SignIn_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *healthLogSyncClient) GetUser(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HealthLogSync_GetUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *healthLogSyncClient) SignOut(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, HealthLogSync_SignOut_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *healthLogSyncClient) UploadHealthLog(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, HealthLogSync_UploadHealthLog_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// HealthLogSyncServer is the server API for the HealthLogSync service.
// Implementations must embed UnimplementedHealthLogSyncServer.
type HealthLogSyncServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SignOut(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	UploadHealthLog(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	mustEmbedUnimplementedHealthLogSyncServer()
}

type UnimplementedHealthLogSyncServer struct{}

func (UnimplementedHealthLogSyncServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedHealthLogSyncServer) SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedHealthLogSyncServer) SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedHealthLogSyncServer) GetUser(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetUser not implemented")
}
func (UnimplementedHealthLogSyncServer) SignOut(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedHealthLogSyncServer) UploadHealthLog(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UploadHealthLog not implemented")
}
func (UnimplementedHealthLogSyncServer) mustEmbedUnimplementedHealthLogSyncServer() {}

func RegisterHealthLogSyncServer(s grpc.ServiceRegistrar, srv HealthLogSyncServer) {
	s.RegisterService(&HealthLogSync_ServiceDesc, srv)
}

func _HealthLogSync_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthLogSyncServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthLogSync_Ping_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HealthLogSyncServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _HealthLogSync_SignUp_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthLogSyncServer).SignUp(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthLogSync_SignUp_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HealthLogSyncServer).SignUp(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _HealthLogSync_SignIn_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthLogSyncServer).SignIn(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthLogSync_SignIn_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HealthLogSyncServer).SignIn(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _HealthLogSync_GetUser_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthLogSyncServer).GetUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthLogSync_GetUser_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HealthLogSyncServer).GetUser(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _HealthLogSync_SignOut_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthLogSyncServer).SignOut(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthLogSync_SignOut_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HealthLogSyncServer).SignOut(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _HealthLogSync_UploadHealthLog_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HealthLogSyncServer).UploadHealthLog(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthLogSync_UploadHealthLog_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HealthLogSyncServer).UploadHealthLog(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var HealthLogSync_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HealthLogSyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: _HealthLogSync_Ping_Handler},
		{MethodName: "SignUp", Handler: _HealthLogSync_SignUp_Handler},
		{MethodName: "SignIn", Handler: _HealthLogSync_SignIn_Handler},
		{MethodName: "GetUser", Handler: _HealthLogSync_GetUser_Handler},
		{MethodName: "SignOut", Handler: _HealthLogSync_SignOut_Handler},
		{MethodName: "UploadHealthLog", Handler: _HealthLogSync_UploadHealthLog_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "healthlog/sync.proto",
}
