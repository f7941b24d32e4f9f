// Package logger 基于zap的结构化日志
//
// 使用方式:
//
//	log, err := logger.New(logger.Config{Level: "info", Format: "json"})
//	if err != nil { ... }
//	defer log.Sync()
//	zap.ReplaceGlobals(log) // 之后各层通过zap.L()取用
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | 文件路径
	EnableCaller bool
}

// New 根据配置创建Logger
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.DisableCaller = !cfg.EnableCaller
	zcfg.Sampling = nil

	switch strings.ToLower(cfg.Format) {
	case "", "console":
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		zcfg.Encoding = "json"
	default:
		return nil, fmt.Errorf("不支持的日志格式: %s", cfg.Format)
	}

	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	zcfg.OutputPaths = []string{output}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	return zcfg.Build()
}

// ParseLevel 解析日志级别,空字符串视为info
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return l, fmt.Errorf("无效的日志级别: %s", level)
	}
	return l, nil
}
