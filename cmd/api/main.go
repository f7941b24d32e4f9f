// @title           图书目录服务API
// @version         1.0
// @description     图书、作者、出版社目录维护接口
// @host            localhost:8080
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     格式：Bearer {access_token}
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/xiebiao/bookcatalog/docs"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 日志（之后各层通过zap.L()取用）
	zl, err := logger.New(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if err := run(cfg); err != nil {
		zap.L().Fatal("服务异常退出", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 链路追踪
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Server.Name,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("初始化链路追踪失败: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			zap.L().Warn("关闭TracerProvider失败", zap.Error(err))
		}
	}()

	// 4. 依赖注入
	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()

	zap.L().Info("配置加载成功",
		zap.String("mode", cfg.Server.Mode),
		zap.String("database", cfg.Database.Driver),
		zap.String("redis", cfg.Redis.Addr()),
		zap.Bool("mq", cfg.MQ.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled),
	)

	return app.serve(ctx)
}

// serve 启动HTTP（以及可选的gRPC）服务，ctx取消后优雅关闭
func (a *App) serve(ctx context.Context) error {
	errCh := make(chan error, 2)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
	go func() {
		zap.L().Info("HTTP服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP服务启动失败: %w", err)
		}
	}()

	if a.grpc != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("gRPC监听失败: %w", err)
		}
		go func() {
			zap.L().Info("gRPC服务启动", zap.String("addr", lis.Addr().String()))
			if err := a.grpc.Serve(lis); err != nil {
				errCh <- fmt.Errorf("gRPC服务异常: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		zap.L().Info("收到退出信号，正在优雅关闭服务")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.grpc != nil {
		a.grpc.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP服务强制关闭", zap.Error(err))
	}

	zap.L().Info("服务已关闭")
	return serveErr
}
