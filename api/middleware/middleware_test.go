package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"weighthub/api/response"
	"weighthub/config"
	"weighthub/infrastructure/persistence"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	var fromCtx string
	engine.GET("/ping", func(c *gin.Context) {
		fromCtx = persistence.RequestIDFromContext(c.Request.Context())
		c.String(http.StatusOK, response.GetRequestID(c))
	})

	w := serve(engine, http.MethodGet, "/ping", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())
	assert.Equal(t, generated, fromCtx)

	w = serve(engine, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", fromCtx)
}

func TestRecoveryMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestIDMiddleware(), RecoveryMiddleware())
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(engine, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var env response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "INTERNAL_ERROR", env.Error)
	assert.NotEmpty(t, env.RequestID)
}

func TestCORSMiddleware(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowOrigins: []string{"https://ui.example.com"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:       600,
	}
	engine := gin.New()
	engine.Use(CORSMiddleware(cfg))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, http.MethodOptions, "/x", map[string]string{"Origin": "https://ui.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ui.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))

	w = serve(engine, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestIDMiddleware(), RateLimitMiddleware(&config.RateLimitConfig{Enabled: true, Rate: 0.001, Burst: 2}))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/x", nil).Code)

	w := serve(engine, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var env response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error)
}

func TestRateLimitDisabled(t *testing.T) {
	engine := gin.New()
	engine.Use(RateLimitMiddleware(&config.RateLimitConfig{Enabled: false}))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/x", nil).Code)
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	engine := gin.New()
	engine.Use(m.Middleware())
	engine.GET("/api/v1/weights/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	engine.GET("/metrics", m.Handler())

	serve(engine, http.MethodGet, "/api/v1/weights/1", nil)
	serve(engine, http.MethodGet, "/api/v1/weights/2", nil)
	serve(engine, http.MethodGet, "/nope", nil)

	w := serve(engine, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{code="404",method="GET",path="/api/v1/weights/:id"} 2`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.True(t, strings.Contains(body, "http_request_duration_seconds_bucket"))
	assert.Contains(t, body, "go_goroutines")
}
