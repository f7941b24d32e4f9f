package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/domain/user"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/messaging"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	"github.com/xiebiao/bookcatalog/internal/interface/http/router"
	"github.com/xiebiao/bookcatalog/internal/interface/rpc"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// App 组装完成的应用
type App struct {
	cfg    *config.Config
	engine *gin.Engine
	grpc   *grpc.Server // 未启用时为nil
}

func newApp(cfg *config.Config, engine *gin.Engine, grpcServer *grpc.Server) *App {
	return &App{cfg: cfg, engine: engine, grpc: grpcServer}
}

// provideDB 创建数据库连接，cleanup时关闭连接池
func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	return db, func() {
		if err := sqlDB.Close(); err != nil {
			zap.L().Warn("关闭数据库连接失败", zap.Error(err))
		}
	}, nil
}

// provideRedisClient 创建Redis连接，cleanup时关闭
func provideRedisClient(cfg *config.Config) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			zap.L().Warn("关闭Redis连接失败", zap.Error(err))
		}
	}, nil
}

// provideSessionStore redis.NewSessionStore接收UniversalClient，Wire需要具体类型
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideEventPublisher 消息队列未启用时事件只写调试日志
func provideEventPublisher(cfg *config.Config) (appbook.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return messaging.NoopPublisher{}, func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化消息队列失败: %w", err)
	}

	breaker := messaging.NewBreaker("mq-publisher")
	return messaging.NewEventPublisher(publisher, breaker), func() {
		if err := publisher.Close(); err != nil {
			zap.L().Warn("关闭消息队列连接失败", zap.Error(err))
		}
	}, nil
}

// provideUserService user.NewService的可选参数Wire无法处理
func provideUserService(repo user.Repository) user.Service {
	return user.NewService(repo)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideRouter(cfg *config.Config, handlers router.Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	opts := router.Options{
		Mode:          cfg.Server.Mode,
		EnableSwagger: cfg.Server.Mode != gin.ReleaseMode,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	return router.New(opts, handlers, auth)
}

// provideGRPCServer grpc.enabled为false时返回nil
func provideGRPCServer(cfg *config.Config, catalog rpc.CatalogServer) *grpc.Server {
	if !cfg.GRPC.Enabled {
		return nil
	}
	return rpc.NewServer(catalog)
}
