package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"weighthub/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm/logger"
)

func TestGormLoggerAdapterLevels(t *testing.T) {
	testCases := []struct {
		name      string
		logLevel  logger.LogLevel
		wantInfo  bool
		wantTrace bool
	}{
		{"warn level", logger.Warn, false, false},
		{"info level", logger.Info, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			restore := Replace(zap.New(core))
			defer restore()

			adapter := NewGormLoggerAdapter(tc.logLevel)
			assert.NotNil(t, adapter.LogMode(logger.Info))

			ctx := context.Background()
			adapter.Info(ctx, "test info message")
			adapter.Warn(ctx, "test warn message")
			adapter.Error(ctx, "test error message")
			adapter.Trace(ctx, time.Now(), func() (string, int64) {
				return "SELECT * FROM `weights`", 1
			}, nil)

			assert.Equal(t, tc.wantInfo, logs.FilterMessage("test info message").Len() == 1)
			assert.Equal(t, 1, logs.FilterMessage("test warn message").Len())
			assert.Equal(t, 1, logs.FilterMessage("test error message").Len())

			traces := logs.FilterMessage("SQL query executed")
			assert.Equal(t, tc.wantTrace, traces.Len() == 1)
			if tc.wantTrace {
				assert.Equal(t, "SELECT * FROM `weights`", traces.All()[0].ContextMap()["sql"])
			}
		})
	}
}

func TestGormLoggerAdapterSlowQueryAndNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	adapter := NewGormLoggerAdapterWithConfig(logger.Info, &GormLoggerConfig{
		SlowThreshold:             10 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
		AddCaller:                 true,
	})

	ctx := persistence.ContextWithRequestID(context.Background(), "test-request-123")
	adapter.Trace(ctx, time.Now().Add(-20*time.Millisecond), func() (string, int64) {
		return "SELECT * FROM slow_table", 1
	}, nil)
	adapter.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM `weights` WHERE id = 999", 0
	}, logger.ErrRecordNotFound)
	adapter.Trace(ctx, time.Now(), func() (string, int64) {
		return "INSERT INTO `weights`", 0
	}, errors.New("disk full"))

	slow := logs.FilterMessage("Slow SQL query").All()
	if assert.Len(t, slow, 1) {
		assert.Equal(t, "test-request-123", slow[0].ContextMap()["request_id"])
	}
	assert.Zero(t, logs.FilterMessage("Database record not found").Len())
	assert.Equal(t, 1, logs.FilterMessage("Database operation failed").Len())
}

func TestGormLoggerAdapterSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	adapter := NewGormLoggerAdapter(logger.Silent)
	adapter.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("x"))
	assert.Zero(t, logs.Len())
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, logger.Info, ParseGormLevel("debug"))
	assert.Equal(t, logger.Error, ParseGormLevel("error"))
	assert.Equal(t, logger.Silent, ParseGormLevel("silent"))
	assert.Equal(t, logger.Warn, ParseGormLevel(""))
}
