// Package redis 登录会话与Token黑名单
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
)

// NewClient 创建Redis客户端，启动时Ping一次，连不上直接返回错误
func NewClient(cfg *config.Config) (*redis.Client, error) {
	rc := cfg.Redis
	client := redis.NewClient(&redis.Options{
		Addr:         rc.Addr(),
		ClientName:   cfg.Server.Name,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	})

	timeout := rc.DialTimeout + rc.ReadTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis连接失败(%s): %w", rc.Addr(), err)
	}

	zap.L().Info("Redis连接成功", zap.String("addr", rc.Addr()), zap.Int("db", rc.DB))
	return client, nil
}
