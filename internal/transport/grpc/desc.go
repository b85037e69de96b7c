package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "taskflow.v1.FlowService"

// FlowServiceServer is the server side of taskflow.v1.FlowService. Every
// request and response is a google.protobuf.Struct carrying the same JSON
// shapes as the HTTP API.
type FlowServiceServer interface {
	ListFlows(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetFlow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateFlow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AddTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ToggleTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetFlowStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv FlowServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FlowServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FlowServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var FlowServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlowServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListFlows", FlowServiceServer.ListFlows),
		unaryMethod("GetFlow", FlowServiceServer.GetFlow),
		unaryMethod("CreateFlow", FlowServiceServer.CreateFlow),
		unaryMethod("AddTask", FlowServiceServer.AddTask),
		unaryMethod("ToggleTask", FlowServiceServer.ToggleTask),
		unaryMethod("GetFlowStatus", FlowServiceServer.GetFlowStatus),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskflow/v1/flow.proto",
}

func RegisterFlowServiceServer(s grpc.ServiceRegistrar, srv FlowServiceServer) {
	s.RegisterService(&FlowServiceDesc, srv)
}

// FlowServiceClient calls taskflow.v1.FlowService methods by name.
type FlowServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFlowServiceClient(cc grpc.ClientConnInterface) *FlowServiceClient {
	return &FlowServiceClient{cc: cc}
}

func (c *FlowServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
