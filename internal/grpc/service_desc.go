package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name, also used for health checks.
const ServiceName = "recommender.v1.Recommender"

// RecommenderServer is the server API. Every method takes and returns a
// google.protobuf.Struct carrying the JSON form of the request and response.
type RecommenderServer interface {
	StartSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Answer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Restart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecommendationTally(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, pick func(RecommenderServer) unaryMethod) func(any, context.Context, func(any) error, gogrpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		call := pick(srv.(RecommenderServer))
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var recommenderServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecommenderServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "StartSession", Handler: unaryHandler("StartSession", func(s RecommenderServer) unaryMethod { return s.StartSession })},
		{MethodName: "GetSession", Handler: unaryHandler("GetSession", func(s RecommenderServer) unaryMethod { return s.GetSession })},
		{MethodName: "Answer", Handler: unaryHandler("Answer", func(s RecommenderServer) unaryMethod { return s.Answer })},
		{MethodName: "Restart", Handler: unaryHandler("Restart", func(s RecommenderServer) unaryMethod { return s.Restart })},
		{MethodName: "EndSession", Handler: unaryHandler("EndSession", func(s RecommenderServer) unaryMethod { return s.EndSession })},
		{MethodName: "GetCatalog", Handler: unaryHandler("GetCatalog", func(s RecommenderServer) unaryMethod { return s.GetCatalog })},
		{MethodName: "GetRecommendationTally", Handler: unaryHandler("GetRecommendationTally", func(s RecommenderServer) unaryMethod { return s.GetRecommendationTally })},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "recommender/v1/recommender.proto",
}

// RegisterRecommenderServer registers srv on s.
func RegisterRecommenderServer(s gogrpc.ServiceRegistrar, srv RecommenderServer) {
	s.RegisterService(&recommenderServiceDesc, srv)
}

// Client calls the Recommender service over an existing connection.
type Client struct {
	cc gogrpc.ClientConnInterface
}

func NewClient(cc gogrpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with a request built from fields and decodes the
// response into dest when dest is non-nil.
func (c *Client) Call(ctx context.Context, method string, fields map[string]any, dest any, opts ...gogrpc.CallOption) error {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return fromStruct(out, dest)
}
