package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/response"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// HeaderRequestID 请求ID响应头
const HeaderRequestID = "X-Request-ID"

// SlowRequestThreshold 超过该耗时的请求按Warn级别记录
const SlowRequestThreshold = 3 * time.Second

// Logger 请求日志中间件
// 每个请求生成（或沿用上游传入的）请求ID，写入响应头和日志
// 不记录请求体和Authorization头
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			zap.L().Error("HTTP请求", fields...)
		case latency > SlowRequestThreshold:
			zap.L().Warn("HTTP慢请求", fields...)
		default:
			zap.L().Info("HTTP请求", fields...)
		}
	}
}

// Recovery panic恢复，记录堆栈后返回统一的500响应
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		zap.L().Error("请求处理panic",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		response.Error(c, apperrors.ErrInternal)
		c.Abort()
	})
}
