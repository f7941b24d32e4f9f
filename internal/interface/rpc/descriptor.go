package rpc

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	// 依赖的标准类型文件必须先注册
	_ "google.golang.org/protobuf/types/known/structpb"
	_ "google.golang.org/protobuf/types/known/wrapperspb"
)

// protoFile 与catalogServiceDesc.Metadata一致
const protoFile = "bookcatalog/v1/catalog.proto"

// init 注册服务的文件描述符，反射服务据此向grpcurl等客户端描述接口
// 内容与proto/bookcatalog/v1/catalog.proto相同
func init() {
	method := func(name, in, out string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(in),
			OutputType: proto.String(out),
		}
	}

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(protoFile),
		Package: proto.String("bookcatalog.v1"),
		Dependency: []string{
			"google/protobuf/struct.proto",
			"google/protobuf/wrappers.proto",
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("CatalogService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("FindBookByIsbn", ".google.protobuf.StringValue", ".google.protobuf.Struct"),
				method("FindBookAuthors", ".google.protobuf.StringValue", ".google.protobuf.ListValue"),
				method("FindPublishersByAuthor", ".google.protobuf.StringValue", ".google.protobuf.ListValue"),
			},
		}},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/xiebiao/bookcatalog/internal/interface/rpc"),
		},
		Syntax: proto.String("proto3"),
	}

	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic("构建" + protoFile + "描述符失败: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic("注册" + protoFile + "失败: " + err.Error())
	}
}
