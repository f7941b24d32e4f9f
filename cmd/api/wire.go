//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	appuser "github.com/xiebiao/bookcatalog/internal/application/user"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	"github.com/xiebiao/bookcatalog/internal/interface/http/router"
	"github.com/xiebiao/bookcatalog/internal/interface/rpc"
)

// infrastructureSet 数据库、Redis、消息队列
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedisClient,
	provideSessionStore,
	provideEventPublisher,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
)

// repositorySet 仓储
var repositorySet = wire.NewSet(
	database.NewUserRepository,
	database.NewBookRepository,
	database.NewAuthorRepository,
	database.NewPublisherRepository,
	database.NewTxManager,
	wire.Bind(new(book.Transactor), new(*database.TxManager)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideUserService,
	book.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewRefreshUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewProfileUseCase,
	appbook.NewAddBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewRemoveBookUseCase,
	appbook.NewRemoveAuthorUseCase,
	appbook.NewQueryBooksUseCase,
)

// interfaceSet HTTP与gRPC
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewAuthorHandler,
	handler.NewPublisherHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideRouter,
	rpc.NewCatalogServer,
	provideGRPCServer,
)

// InitializeApp 组装整个应用
// cleanup按创建的逆序释放资源
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
