package api

import (
	"net/http"

	"weighthub/api/middleware"
	"weighthub/config"

	"github.com/gin-gonic/gin"
)

// APIPrefix 所有业务路由挂在该分组下
const APIPrefix = "/api/v1"

// ControllerRegister 控制器在 API 分组下注册自己的路由
type ControllerRegister interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// MiddlewareRegister 额外的中间件，排在默认中间件之后
type MiddlewareRegister func() gin.HandlerFunc

// Route 挂在根路径下的自定义路由
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// Router Route configuration
type Router struct {
	engine       *gin.Engine
	config       *config.Config
	controllers  []ControllerRegister
	customRoutes []Route
	metrics      *middleware.Metrics
}

// NewRouter metrics 为 nil 时不采集也不暴露指标
func NewRouter(
	cfg *config.Config,
	controllers []ControllerRegister,
	middlewares []MiddlewareRegister,
	customRoutes []Route,
	metrics *middleware.Metrics,
) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// order matters: request id must exist before anything logs
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))
	for _, m := range middlewares {
		engine.Use(m())
	}

	return &Router{
		engine:       engine,
		config:       cfg,
		controllers:  controllers,
		customRoutes: customRoutes,
		metrics:      metrics,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group(APIPrefix)
	for _, c := range r.controllers {
		c.RegisterRoutes(apiGroup)
	}

	for _, route := range r.customRoutes {
		r.engine.Handle(route.Method, route.Path, route.Handler)
	}

	if r.metrics != nil && r.config.Metrics.Enabled {
		r.engine.GET(r.config.Metrics.Path, r.metrics.Handler())
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"storage": r.config.Database.Type,
			"health":  APIPrefix + "/health",
			"weights": APIPrefix + "/weights",
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
