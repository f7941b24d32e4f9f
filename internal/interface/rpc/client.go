package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CatalogClient gRPC客户端
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogClient 创建客户端
func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

// FindBookByIsbn 根据ISBN查询图书
func (c *CatalogClient) FindBookByIsbn(ctx context.Context, isbn string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/FindBookByIsbn", wrapperspb.String(isbn), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// FindBookAuthors 查询图书的作者
func (c *CatalogClient) FindBookAuthors(ctx context.Context, isbn string, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/FindBookAuthors", wrapperspb.String(isbn), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// FindPublishersByAuthor 查询作者合作过的出版社
func (c *CatalogClient) FindPublishersByAuthor(ctx context.Context, author string, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/FindPublishersByAuthor", wrapperspb.String(author), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
