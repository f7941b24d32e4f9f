package rpc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// MaxMsgSize 单条消息上限
const MaxMsgSize = 4 * 1024 * 1024

// NewServer 创建gRPC服务器
// 注册目录服务、健康检查和反射服务
func NewServer(catalog CatalogServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(MaxMsgSize),
		grpc.MaxSendMsgSize(MaxMsgSize),
		grpc.ChainUnaryInterceptor(recoveryInterceptor, loggingInterceptor),
	)

	RegisterCatalogServer(s, catalog)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	// 便于grpcurl调试
	reflection.Register(s)
	return s
}

// toStatus 应用错误 → gRPC状态
// NotFound附带ResourceInfo，说明哪个资源不存在
func toStatus(err error, resourceType, resourceName string) error {
	appErr := apperrors.GetAppError(err)

	switch {
	case apperrors.IsNotFound(err):
		st := status.New(codes.NotFound, appErr.Message)
		if detailed, derr := st.WithDetails(&errdetails.ResourceInfo{
			ResourceType: resourceType,
			ResourceName: resourceName,
			Description:  appErr.Message,
		}); derr == nil {
			st = detailed
		}
		return st.Err()
	case appErr.Code >= apperrors.ErrCodeInvalidParams && appErr.Code < apperrors.ErrCodeInvalidParams+100:
		return status.Error(codes.InvalidArgument, appErr.Message)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		zap.L().Error("gRPC请求失败", zap.Error(err))
		return status.Error(codes.Internal, "系统内部错误")
	}
}

func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	zap.L().Info("gRPC请求",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, err
}

func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("gRPC请求panic",
				zap.String("method", info.FullMethod),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = status.Error(codes.Internal, "系统内部错误")
		}
	}()
	return handler(ctx, req)
}
