package cmd

import (
	"context"
	"fmt"
	"net/http"

	"weighthub/api"
	"weighthub/api/health"
	"weighthub/api/middleware"
	apiweight "weighthub/api/weight"
	weightapp "weighthub/application/weight"
	"weighthub/config"
	"weighthub/domain/shared"
	"weighthub/domain/weight"
	"weighthub/infrastructure/artifact"
	"weighthub/infrastructure/persistence/gormdb"
	"weighthub/infrastructure/persistence/memory"
	"weighthub/infrastructure/persistence/retry"
	"weighthub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppBuilder builds an App with customizable components
type AppBuilder struct {
	cfg          *config.Config
	controllers  []api.ControllerRegister
	middlewares  []api.MiddlewareRegister
	customRoutes []api.Route
	resolver     weight.ArtifactResolver
	skipLogger   bool
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{
		cfg:          cfg,
		controllers:  []api.ControllerRegister{},
		middlewares:  []api.MiddlewareRegister{},
		customRoutes: []api.Route{},
	}
}

// WithController adds a controller to the app
func (b *AppBuilder) WithController(c api.ControllerRegister) *AppBuilder {
	b.controllers = append(b.controllers, c)
	return b
}

// WithMiddleware adds a middleware to the app
func (b *AppBuilder) WithMiddleware(m api.MiddlewareRegister) *AppBuilder {
	b.middlewares = append(b.middlewares, m)
	return b
}

// WithRoute adds a custom route
func (b *AppBuilder) WithRoute(method, path string, handler gin.HandlerFunc) *AppBuilder {
	b.customRoutes = append(b.customRoutes, api.Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
	return b
}

// WithResolver 替换默认的权重文件解析器
func (b *AppBuilder) WithResolver(r weight.ArtifactResolver) *AppBuilder {
	b.resolver = r
	return b
}

// SkipLoggerInit 日志已由调用方初始化时使用，例如测试中替换为 observer
func (b *AppBuilder) SkipLoggerInit() *AppBuilder {
	b.skipLogger = true
	return b
}

type storage struct {
	db         *gorm.DB
	repo       weight.Repository
	uowFactory shared.UnitOfWorkFactory
	ping       health.Pinger
}

// Build creates the App instance
func (b *AppBuilder) Build() (*App, error) {
	if !b.skipLogger {
		if err := logger.Init(&b.cfg.Log, b.cfg.App.Env); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env),
		zap.String("storage", b.cfg.Database.Type))

	store, err := b.initStorage()
	if err != nil {
		return nil, err
	}

	var metrics *middleware.Metrics
	if b.cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics()
	}

	resolver := b.resolver
	if resolver == nil {
		var opts []artifact.Option
		if metrics != nil {
			opts = append(opts, artifact.WithRegisterer(metrics.Registry()))
		}
		resolver = artifact.NewResolver(b.cfg.Artifact, opts...)
	}

	weightService := weightapp.NewApplicationService(store.repo, store.uowFactory, resolver, b.cfg.Pagination.MaxSize)

	if !b.hasHealthController() {
		b.controllers = append(b.controllers, health.NewController(b.cfg, store.ping))
	}
	if !b.hasWeightController() {
		b.controllers = append(b.controllers, apiweight.NewController(weightService))
	}

	router := api.NewRouter(b.cfg, b.controllers, b.middlewares, b.customRoutes, metrics)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	return &App{
		config: b.cfg,
		router: router,
		server: server,
		db:     store.db,
	}, nil
}

func (b *AppBuilder) initStorage() (*storage, error) {
	retryConfig := retry.FromAppConfig(b.cfg)

	if b.cfg.Database.Type == config.DatabaseMemory {
		logger.Info("Using in-memory persistence layer")
		bus := shared.NewEventBus()
		if err := bus.Subscribe(shared.WildcardEvent, memory.NewLoggingHandler()); err != nil {
			return nil, fmt.Errorf("failed to subscribe event logger: %w", err)
		}
		return &storage{
			repo:       memory.NewWeightRepository(),
			uowFactory: memory.NewUnitOfWorkFactory(bus, retryConfig),
		}, nil
	}

	db, err := OpenDatabase(b.cfg)
	if err != nil {
		return nil, err
	}
	return &storage{
		db:         db,
		repo:       gormdb.NewWeightRepository(db),
		uowFactory: gormdb.NewUnitOfWorkFactory(db, retryConfig),
		ping: func(ctx context.Context) error {
			return gormdb.Ping(ctx, db)
		},
	}, nil
}

func (b *AppBuilder) hasWeightController() bool {
	for _, c := range b.controllers {
		if _, ok := c.(*apiweight.Controller); ok {
			return true
		}
	}
	return false
}

func (b *AppBuilder) hasHealthController() bool {
	for _, c := range b.controllers {
		if _, ok := c.(*health.Controller); ok {
			return true
		}
	}
	return false
}
