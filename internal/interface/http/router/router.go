// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// Options 路由选项
type Options struct {
	Mode          string // debug | release | test
	MetricsPath   string // 为空时不暴露指标
	EnableSwagger bool
}

// Handlers 所有HTTP处理器
type Handlers struct {
	Book      *handler.BookHandler
	Author    *handler.AuthorHandler
	Publisher *handler.PublisherHandler
	User      *handler.UserHandler
}

// New 创建Gin引擎并注册路由
//
//	GET    /ping
//	GET    /metrics
//	GET    /swagger/*any
//	POST   /api/v1/users/register|login|refresh
//	POST   /api/v1/users/logout           (登录)
//	GET    /api/v1/users/me               (登录)
//	POST   /api/v1/books                  (登录)
//	GET    /api/v1/books/:isbn
//	PUT    /api/v1/books/:isbn            (登录)
//	PUT    /api/v1/books/:isbn/title/:title (登录)
//	DELETE /api/v1/books/:isbn            (登录)
//	GET    /api/v1/books/:isbn/authors
//	GET    /api/v1/authors/:name/books
//	GET    /api/v1/authors/:name/publishers
//	DELETE /api/v1/authors/:name          (登录)
//	GET    /api/v1/publishers/:name/books
func New(opts Options, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Tracing(), middleware.Logger(), middleware.Metrics())

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	if opts.MetricsPath != "" {
		r.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	// 生产环境建议关闭
	if opts.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	requireAuth := auth.RequireAuth()

	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/refresh", h.User.Refresh)
		users.POST("/logout", requireAuth, h.User.Logout)
		users.GET("/me", requireAuth, h.User.Me)
	}

	books := v1.Group("/books")
	{
		books.POST("", requireAuth, h.Book.AddBook)
		books.GET("/:isbn", h.Book.GetBook)
		books.PUT("/:isbn", requireAuth, h.Book.UpdateBook)
		books.PUT("/:isbn/title/:title", requireAuth, h.Book.UpdateTitle)
		books.DELETE("/:isbn", requireAuth, h.Book.RemoveBook)
		books.GET("/:isbn/authors", h.Book.GetBookAuthors)
	}

	authors := v1.Group("/authors")
	{
		authors.GET("/:name/books", h.Author.GetBooks)
		authors.GET("/:name/publishers", h.Author.GetPublishers)
		authors.DELETE("/:name", requireAuth, h.Author.Remove)
	}

	v1.GET("/publishers/:name/books", h.Publisher.GetBooks)

	return r
}
