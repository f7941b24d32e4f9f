package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// stubService 只实现查询方法
type stubService struct {
	book.Service

	books      map[string]*book.Book
	publishers map[string][]string
}

func (s *stubService) FindBookByISBN(_ context.Context, isbn string) (*book.Book, error) {
	b, ok := s.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (s *stubService) FindBookAuthors(ctx context.Context, isbn string) ([]book.Author, error) {
	b, err := s.FindBookByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return b.Authors, nil
}

func (s *stubService) FindPublishersByAuthor(_ context.Context, name string) ([]string, error) {
	return s.publishers[name], nil
}

func newTestClient(t *testing.T) (*CatalogClient, *grpc.ClientConn) {
	t.Helper()

	birth, _ := time.Parse(book.DateLayout, "1942-01-30")
	svc := &stubService{
		books: map[string]*book.Book{
			"978-0-13": {
				ISBN:      "978-0-13",
				Title:     "The C Programming Language",
				Publisher: book.Publisher{Name: "Prentice Hall"},
				Authors:   []book.Author{{Name: "Brian Kernighan", BirthDate: birth}},
			},
		},
		publishers: map[string][]string{
			"Brian Kernighan": {"Addison-Wesley", "Prentice Hall"},
		},
	}

	lis := bufconn.Listen(1024 * 1024)
	srv := NewServer(NewCatalogServer(appbook.NewQueryBooksUseCase(svc)))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewCatalogClient(conn), conn
}

func TestFindBookByIsbn(t *testing.T) {
	client, _ := newTestClient(t)

	resp, err := client.FindBookByIsbn(context.Background(), "978-0-13")
	require.NoError(t, err)

	fields := resp.AsMap()
	assert.Equal(t, "978-0-13", fields["isbn"])
	assert.Equal(t, "The C Programming Language", fields["title"])
	assert.Equal(t, "Prentice Hall", fields["publisher"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "Brian Kernighan", "birth_date": "1942-01-30"},
	}, fields["authors"])
}

func TestFindBookByIsbn_NotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.FindBookByIsbn(context.Background(), "missing")
	require.Error(t, err)

	st := status.Convert(err)
	assert.Equal(t, codes.NotFound, st.Code())
	require.Len(t, st.Details(), 1)
	info, ok := st.Details()[0].(*errdetails.ResourceInfo)
	require.True(t, ok)
	assert.Equal(t, "book", info.GetResourceType())
	assert.Equal(t, "missing", info.GetResourceName())
}

func TestFindBookAuthors(t *testing.T) {
	client, _ := newTestClient(t)

	resp, err := client.FindBookAuthors(context.Background(), "978-0-13")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "Brian Kernighan", "birth_date": "1942-01-30"},
	}, resp.AsSlice())
}

func TestFindPublishersByAuthor(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	resp, err := client.FindPublishersByAuthor(ctx, "Brian Kernighan")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Addison-Wesley", "Prentice Hall"}, resp.AsSlice())

	// 未知作者返回空列表
	resp, err = client.FindPublishersByAuthor(ctx, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, resp.GetValues())
}

func TestHealth(t *testing.T) {
	_, conn := newTestClient(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestServiceDescriptorRegistered(t *testing.T) {
	d, err := protoregistry.GlobalFiles.FindDescriptorByName(protoreflect.FullName(ServiceName))
	require.NoError(t, err)

	svc, ok := d.(protoreflect.ServiceDescriptor)
	require.True(t, ok)
	assert.Equal(t, protoFile, svc.ParentFile().Path())

	methods := svc.Methods()
	require.Equal(t, len(catalogServiceDesc.Methods), methods.Len())
	for _, m := range catalogServiceDesc.Methods {
		md := methods.ByName(protoreflect.Name(m.MethodName))
		require.NotNil(t, md, m.MethodName)
		assert.Equal(t, protoreflect.FullName("google.protobuf.StringValue"), md.Input().FullName())
	}
	assert.Equal(t, protoreflect.FullName("google.protobuf.Struct"), methods.ByName("FindBookByIsbn").Output().FullName())
}

// TestReflection 反射服务能按服务名返回文件描述符
func TestReflection(t *testing.T) {
	_, conn := newTestClient(t)

	stream, err := reflectionpb.NewServerReflectionClient(conn).ServerReflectionInfo(context.Background())
	require.NoError(t, err)
	require.NoError(t, stream.Send(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_FileContainingSymbol{FileContainingSymbol: ServiceName},
	}))
	resp, err := stream.Recv()
	require.NoError(t, err)
	require.NoError(t, stream.CloseSend())

	require.Nil(t, resp.GetErrorResponse())
	var names []string
	for _, raw := range resp.GetFileDescriptorResponse().GetFileDescriptorProto() {
		fdp := new(descriptorpb.FileDescriptorProto)
		require.NoError(t, proto.Unmarshal(raw, fdp))
		names = append(names, fdp.GetName())
	}
	assert.Contains(t, names, protoFile)
}
