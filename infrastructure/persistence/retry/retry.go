package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"weighthub/config"
	"weighthub/domain/weight"
	"weighthub/pkg/logger"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MySQL error numbers
const (
	mysqlDeadlock    = 1213
	mysqlLockTimeout = 1205
)

type Config struct {
	Enabled                       bool
	MaxAttempts                   int
	InitialDelay                  time.Duration
	MaxDelay                      time.Duration
	BackoffFactor                 float64
	JitterEnabled                 bool
	RetryOnConcurrentModification bool
	RetryOnDeadlock               bool
	RetryOnLockTimeout            bool
	RetryPredicate                func(error) bool
}

var DefaultConfig = Config{
	Enabled:                       true,
	MaxAttempts:                   3,
	InitialDelay:                  100 * time.Millisecond,
	MaxDelay:                      2 * time.Second,
	BackoffFactor:                 2.0,
	JitterEnabled:                 true,
	RetryOnConcurrentModification: true,
	RetryOnDeadlock:               true,
	RetryOnLockTimeout:            true,
}

// FromAppConfig 从 database.retry 配置段构造重试策略
func FromAppConfig(appConfig *config.Config) Config {
	rc := appConfig.Database.Retry
	return Config{
		Enabled:                       rc.Enabled,
		MaxAttempts:                   rc.MaxAttempts,
		InitialDelay:                  rc.InitialDelay,
		MaxDelay:                      rc.MaxDelay,
		BackoffFactor:                 rc.BackoffFactor,
		JitterEnabled:                 rc.JitterEnabled,
		RetryOnConcurrentModification: rc.RetryOnConcurrentModification,
		RetryOnDeadlock:               rc.RetryOnDeadlock,
		RetryOnLockTimeout:            rc.RetryOnLockTimeout,
	}
}

// ExponentialBackoffWithJitter attempt 从 1 开始；开启抖动时在 [0.8, 1.2) 倍之间浮动
func ExponentialBackoffWithJitter(attempt int, config Config) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.JitterEnabled {
		delay = delay * (0.8 + rand.Float64()*0.4)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// IsRetryableError 按配置判断乐观锁冲突、死锁、锁等待超时是否可重试
func IsRetryableError(err error, config Config) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if config.RetryPredicate != nil && config.RetryPredicate(err) {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}

	if config.RetryOnConcurrentModification && errors.Is(err, weight.ErrConcurrentModification) {
		return true
	}

	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDeadlock:
			return config.RetryOnDeadlock
		case mysqlLockTimeout:
			return config.RetryOnLockTimeout
		}
		return false
	}

	errStr := strings.ToLower(err.Error())
	if config.RetryOnDeadlock && (strings.Contains(errStr, "deadlock") || strings.Contains(errStr, "database is locked")) {
		return true
	}
	if config.RetryOnLockTimeout && strings.Contains(errStr, "lock wait timeout") {
		return true
	}
	if errors.Is(err, gorm.ErrInvalidTransaction) ||
		(strings.Contains(errStr, "connection") && strings.Contains(errStr, "lost")) {
		return true
	}
	return false
}

// ExecuteWithRetry 按配置重试 fn，返回最后一次的错误
func ExecuteWithRetry(ctx context.Context, config Config, fn func(ctx context.Context) error) error {
	if !config.Enabled || config.MaxAttempts <= 1 {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRetryableError(err, config) || attempt == config.MaxAttempts {
			break
		}

		delay := ExponentialBackoffWithJitter(attempt, config)
		logger.FromContext(ctx).Warn("Retrying transaction",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	return lastErr
}
