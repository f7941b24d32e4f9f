// Package rpc 图书目录只读gRPC接口
//
// 服务：bookcatalog.v1.CatalogService
//
//	FindBookByIsbn(google.protobuf.StringValue)         returns (google.protobuf.Struct)
//	FindBookAuthors(google.protobuf.StringValue)        returns (google.protobuf.ListValue)
//	FindPublishersByAuthor(google.protobuf.StringValue) returns (google.protobuf.ListValue)
//
// 请求和响应都使用protobuf标准类型，客户端不需要生成代码。服务的文件描述符在
// descriptor.go中注册，配合反射服务grpcurl可以直接describe和调用。
// Struct的字段与HTTP接口的JSON一致。
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
)

// ServiceName gRPC服务全名
const ServiceName = "bookcatalog.v1.CatalogService"

// CatalogServer 服务端接口
type CatalogServer interface {
	FindBookByIsbn(ctx context.Context, isbn *wrapperspb.StringValue) (*structpb.Struct, error)
	FindBookAuthors(ctx context.Context, isbn *wrapperspb.StringValue) (*structpb.ListValue, error)
	FindPublishersByAuthor(ctx context.Context, author *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// catalogServer 基于查询用例的实现
type catalogServer struct {
	query *appbook.QueryBooksUseCase
}

// NewCatalogServer 创建gRPC服务实现
func NewCatalogServer(query *appbook.QueryBooksUseCase) CatalogServer {
	return &catalogServer{query: query}
}

// FindBookByIsbn 根据ISBN查询图书
func (s *catalogServer) FindBookByIsbn(ctx context.Context, isbn *wrapperspb.StringValue) (*structpb.Struct, error) {
	view, err := s.query.FindBookByISBN(ctx, isbn.GetValue())
	if err != nil {
		return nil, toStatus(err, "book", isbn.GetValue())
	}
	return structpb.NewStruct(bookFields(*view))
}

// FindBookAuthors 查询图书的作者
func (s *catalogServer) FindBookAuthors(ctx context.Context, isbn *wrapperspb.StringValue) (*structpb.ListValue, error) {
	authors, err := s.query.FindBookAuthors(ctx, isbn.GetValue())
	if err != nil {
		return nil, toStatus(err, "book", isbn.GetValue())
	}
	return structpb.NewList(authorValues(authors))
}

// FindPublishersByAuthor 查询作者合作过的出版社名称
func (s *catalogServer) FindPublishersByAuthor(ctx context.Context, author *wrapperspb.StringValue) (*structpb.ListValue, error) {
	names, err := s.query.FindPublishersByAuthor(ctx, author.GetValue())
	if err != nil {
		return nil, toStatus(err, "author", author.GetValue())
	}
	values := make([]interface{}, len(names))
	for i, n := range names {
		values[i] = n
	}
	return structpb.NewList(values)
}

func bookFields(v appbook.BookView) map[string]interface{} {
	return map[string]interface{}{
		"isbn":      v.ISBN,
		"title":     v.Title,
		"authors":   authorValues(v.Authors),
		"publisher": v.Publisher,
	}
}

func authorValues(authors []appbook.AuthorView) []interface{} {
	values := make([]interface{}, len(authors))
	for i, a := range authors {
		values[i] = map[string]interface{}{
			"name":       a.Name,
			"birth_date": a.BirthDate,
		}
	}
	return values
}

// RegisterCatalogServer 注册服务
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

// catalogServiceDesc 手写的服务描述，等价于protoc-gen-go-grpc生成的代码
var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "FindBookByIsbn",
			Handler: unaryHandler("FindBookByIsbn", func(srv CatalogServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.FindBookByIsbn(ctx, in)
			}),
		},
		{
			MethodName: "FindBookAuthors",
			Handler: unaryHandler("FindBookAuthors", func(srv CatalogServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.FindBookAuthors(ctx, in)
			}),
		},
		{
			MethodName: "FindPublishersByAuthor",
			Handler: unaryHandler("FindPublishersByAuthor", func(srv CatalogServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.FindPublishersByAuthor(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

// unaryHandler 解码StringValue请求并经过拦截器调用实现
func unaryHandler(
	method string,
	call func(srv CatalogServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CatalogServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}
