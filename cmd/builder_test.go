package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"weighthub/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, dbType string) *config.Config {
	t.Helper()
	return &config.Config{
		App:    config.AppConfig{Name: "weighthub", Version: "test", Env: "development"},
		Server: config.ServerConfig{Port: "0", ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{
			Type:       dbType,
			SQLitePath: filepath.Join(t.TempDir(), "weights.db"),
			LogLevel:   "silent",
		},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Pagination: config.PaginationConfig{MaxSize: 100},
		Artifact:   config.ArtifactConfig{CacheDir: t.TempDir()},
	}
}

func send(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestBuildServesWeightAPI(t *testing.T) {
	for _, dbType := range []string{config.DatabaseMemory, config.DatabaseSQLite} {
		t.Run(dbType, func(t *testing.T) {
			app, err := NewBuilder(testConfig(t, dbType)).SkipLoggerInit().Build()
			require.NoError(t, err)
			t.Cleanup(app.closeDB)
			engine := app.GetEngine()

			w := send(engine, http.MethodPost, "/api/v1/weights", `{"name":"sam","localPath":"/m/sam.pth","enable":1}`)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			location := w.Header().Get("Location")
			assert.Equal(t, "/api/v1/weights/1", location)

			w = send(engine, http.MethodGet, "/api/v1/weights?currentPage=1&size=10&weight=SAM", "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var env struct {
				Data struct {
					List  []map[string]any `json:"list"`
					Total int64            `json:"total"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.EqualValues(t, 1, env.Data.Total)

			assert.Equal(t, http.StatusOK, send(engine, http.MethodDelete, location, "").Code)
			assert.Equal(t, http.StatusOK, send(engine, http.MethodGet, "/api/v1/health", "").Code)

			w = send(engine, http.MethodGet, "/metrics", "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
		})
	}
}

func TestBuildWithCustomRoute(t *testing.T) {
	app, err := NewBuilder(testConfig(t, config.DatabaseMemory)).
		SkipLoggerInit().
		WithRoute(http.MethodGet, "/version", func(c *gin.Context) { c.String(http.StatusOK, "test") }).
		Build()
	require.NoError(t, err)

	w := send(app.GetEngine(), http.MethodGet, "/version", "")
	assert.Equal(t, "test", w.Body.String())
}

func TestOpenDatabaseRejectsMemory(t *testing.T) {
	_, err := OpenDatabase(testConfig(t, config.DatabaseMemory))
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	app, err := NewBuilder(testConfig(t, config.DatabaseSQLite)).SkipLoggerInit().Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Nil(t, app.db)
}
