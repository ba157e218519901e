package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"streamhub/internal/catalog"
	"streamhub/internal/shelves"
)

const ServiceName = "streamhub.v1.Catalog"

type ListTitlesRequest struct {
	Query     string `json:"q,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Watched   string `json:"watched,omitempty"`
	ProfileID string `json:"profileId,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Raw       bool   `json:"raw,omitempty"`
}

type ListTitlesResponse struct {
	Titles []catalog.DisplayEntity `json:"titles"`
}

type GetShelvesRequest struct {
	ProfileID string `json:"profileId"`
}

type GetShelvesResponse struct {
	Shelves shelves.Home `json:"shelves"`
}

// CatalogServer is the server API for streamhub.v1.Catalog.
type CatalogServer interface {
	ListTitles(context.Context, *ListTitlesRequest) (*ListTitlesResponse, error)
	GetShelves(context.Context, *GetShelvesRequest) (*GetShelvesResponse, error)
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

func listTitlesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListTitlesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).ListTitles(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListTitles"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).ListTitles(ctx, req.(*ListTitlesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getShelvesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetShelvesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetShelves(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetShelves"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).GetShelves(ctx, req.(*GetShelvesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListTitles", Handler: listTitlesHandler},
		{MethodName: "GetShelves", Handler: getShelvesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "streamhub/v1/catalog",
}

// CatalogClient calls streamhub.v1.Catalog with the JSON codec.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) ListTitles(ctx context.Context, in *ListTitlesRequest, opts ...grpc.CallOption) (*ListTitlesResponse, error) {
	out := new(ListTitlesResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/ListTitles", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetShelves(ctx context.Context, in *GetShelvesRequest, opts ...grpc.CallOption) (*GetShelvesResponse, error) {
	out := new(GetShelvesResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetShelves", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
