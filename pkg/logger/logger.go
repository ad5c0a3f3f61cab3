/*
Package logger 是 weighthub 的全局 zap logger。

Init 之前调用任何函数都是安全的，此时日志被丢弃。
请求内的日志用 FromContext，会自动带上 request_id。
*/
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"weighthub/config"
	"weighthub/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	log       *zap.Logger
	atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init 按配置构建全局 logger。env 为 development 时默认使用 console 编码
func Init(cfg *config.LogConfig, env string) error {
	atomLevel.SetLevel(parseLevel(cfg.Level))

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format, env), sink, atomLevel)
	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

func newEncoder(format, env string) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch format {
	case "json":
		return zapcore.NewJSONEncoder(ec)
	case "console":
		return zapcore.NewConsoleEncoder(ec)
	}
	if env == "dev" || env == "development" {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

// newSink output=file 时写入 lumberjack 滚动文件，其余写 stdout
func newSink(cfg *config.LogConfig) (zapcore.WriteSyncer, error) {
	if cfg.Output != "file" {
		return zapcore.AddSync(os.Stdout), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.Rotation.MaxSizeMB,
		MaxBackups: cfg.Rotation.MaxBackups,
		MaxAge:     cfg.Rotation.MaxAgeDays,
		Compress:   cfg.Rotation.Compress,
	}), nil
}

// Replace 替换全局 logger 并返回恢复函数，测试中配合 zaptest/observer 使用
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}

// parseLevel 无法识别的级别按 info 处理
func parseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Get 返回全局 logger，未初始化时返回 Nop
func Get() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// UpdateLevel 运行时调整日志级别
func UpdateLevel(level string) {
	atomLevel.SetLevel(parseLevel(level))
}

// Sync 忽略 stdout 是终端或管道时 fsync 返回的错误
func Sync() error {
	if log == nil {
		return nil
	}
	err := log.Sync()
	if err == nil || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EBADF) {
		return nil
	}
	return err
}

func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// WithRequestID 带 request_id 字段的子 logger
func WithRequestID(requestID string) *zap.Logger {
	return With(zap.String("request_id", requestID))
}

// FromContext 带上 ctx 中的请求 ID
func FromContext(ctx context.Context) *zap.Logger {
	if requestID := persistence.RequestIDFromContext(ctx); requestID != "" {
		return WithRequestID(requestID)
	}
	return Get()
}

func Debug(msg string, fields ...zap.Field) { Get().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Get().Error(msg, fields...) }
