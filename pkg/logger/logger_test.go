package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"weighthub/config"
	"weighthub/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNilLoggerSafety(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	Debug("test debug")
	Info("test info")
	Warn("test warn")
	Error("test error")

	assert.NotNil(t, Get())
	assert.NotNil(t, With(zap.String("key", "value")))
	assert.NotNil(t, WithRequestID("test-id"))
	assert.NotNil(t, FromContext(context.Background()))
	assert.NoError(t, Sync())
}

func TestInitConsoleAndJSON(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	require.NoError(t, Init(&config.LogConfig{Level: "debug", Output: "stdout"}, "development"))
	Info("development logger initialized", zap.String("env", "development"))

	require.NoError(t, Init(&config.LogConfig{Level: "info", Format: "json", Output: "stdout"}, "production"))
	Info("production logger initialized")
	_ = Sync()
}

func TestFileOutput(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	path := filepath.Join(t.TempDir(), "nested", "weighthub.log")
	require.NoError(t, Init(&config.LogConfig{Level: "info", Format: "json", Output: "file", FilePath: path}, "production"))

	for i := 0; i < 10; i++ {
		Info("log entry", zap.Int("entry", i))
	}
	_ = Sync()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestDynamicLogLevel(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	require.NoError(t, Init(&config.LogConfig{Level: "debug", Output: "stdout"}, "development"))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))

	UpdateLevel("warn")
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))

	UpdateLevel("unknown")
	assert.True(t, Get().Core().Enabled(zapcore.InfoLevel), "unknown levels fall back to info")
}

func TestFromContextCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	ctx := persistence.ContextWithRequestID(context.Background(), "req-42")
	FromContext(ctx).Info("resolved")

	entries := logs.FilterMessage("resolved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
}

func TestFileOutputUsesRotationConfig(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	path := filepath.Join(t.TempDir(), "weighthub.log")
	sink, err := newSink(&config.LogConfig{
		Output:   "file",
		FilePath: path,
		Rotation: config.RotationConfig{MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 3, Compress: true},
	})
	require.NoError(t, err)

	_, err = sink.Write([]byte("weight resolved\n"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "weight resolved\n", string(data))
}

func TestEncoderSelection(t *testing.T) {
	entry := zapcore.Entry{Message: "hello"}

	buf, err := newEncoder("json", "development").EncodeEntry(entry, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf, err = newEncoder("", "production").EncodeEntry(entry, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf, err = newEncoder("", "development").EncodeEntry(entry, nil)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), `"msg"`)
}
