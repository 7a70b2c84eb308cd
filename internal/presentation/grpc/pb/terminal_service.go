// Package pb afsbridge.v1.TerminalService のgRPCサービス定義
//
// メッセージは google.protobuf.Struct を使い、フィールド名はREST APIのJSONと揃える。
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// サービス名とメソッドのフルネーム
const (
	TerminalServiceName                               = "afsbridge.v1.TerminalService"
	TerminalService_MakePayment_FullMethodName        = "/afsbridge.v1.TerminalService/MakePayment"
	TerminalService_FetchPaymentStatus_FullMethodName = "/afsbridge.v1.TerminalService/FetchPaymentStatus"
	TerminalService_CancelPayment_FullMethodName      = "/afsbridge.v1.TerminalService/CancelPayment"
)

// TerminalServiceClient TerminalServiceのクライアント
type TerminalServiceClient interface {
	MakePayment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	FetchPaymentStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CancelPayment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type terminalServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTerminalServiceClient 新しいTerminalServiceClientを作成
func NewTerminalServiceClient(cc grpc.ClientConnInterface) TerminalServiceClient {
	return &terminalServiceClient{cc: cc}
}

func (c *terminalServiceClient) MakePayment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TerminalService_MakePayment_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *terminalServiceClient) FetchPaymentStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TerminalService_FetchPaymentStatus_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *terminalServiceClient) CancelPayment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TerminalService_CancelPayment_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// TerminalServiceServer TerminalServiceのサーバー実装
type TerminalServiceServer interface {
	MakePayment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FetchPaymentStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelPayment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedTerminalServiceServer 未実装のメソッドに Unimplemented を返す
type UnimplementedTerminalServiceServer struct{}

func (UnimplementedTerminalServiceServer) MakePayment(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method MakePayment not implemented")
}

func (UnimplementedTerminalServiceServer) FetchPaymentStatus(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method FetchPaymentStatus not implemented")
}

func (UnimplementedTerminalServiceServer) CancelPayment(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelPayment not implemented")
}

// RegisterTerminalServiceServer サーバーにTerminalServiceを登録
func RegisterTerminalServiceServer(s grpc.ServiceRegistrar, srv TerminalServiceServer) {
	s.RegisterService(&TerminalService_ServiceDesc, srv)
}

// unaryHandler Structを受け取るメソッドのハンドラーを作る
func unaryHandler(
	fullMethod string,
	call func(srv TerminalServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TerminalServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TerminalServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TerminalService_ServiceDesc afsbridge.v1.TerminalService のサービス記述子
var TerminalService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: TerminalServiceName,
	HandlerType: (*TerminalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "MakePayment",
			Handler: unaryHandler(TerminalService_MakePayment_FullMethodName,
				func(srv TerminalServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.MakePayment(ctx, in)
				}),
		},
		{
			MethodName: "FetchPaymentStatus",
			Handler: unaryHandler(TerminalService_FetchPaymentStatus_FullMethodName,
				func(srv TerminalServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.FetchPaymentStatus(ctx, in)
				}),
		},
		{
			MethodName: "CancelPayment",
			Handler: unaryHandler(TerminalService_CancelPayment_FullMethodName,
				func(srv TerminalServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.CancelPayment(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "afsbridge/v1/terminal.proto",
}
