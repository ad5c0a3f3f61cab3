package gormdb

import (
	"fmt"
	"strings"

	"weighthub/config"
	"weighthub/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteConfig 单文件部署使用的 SQLite 连接
type SQLiteConfig struct {
	Path     string
	LogLevel string
}

// NewSQLiteConfig 从 database 配置段读取文件路径
func NewSQLiteConfig(cfg *config.DatabaseConfig) *SQLiteConfig {
	return &SQLiteConfig{
		Path:     cfg.SQLitePath,
		LogLevel: cfg.LogLevel,
	}
}

// DSN 追加 busy_timeout 与外键开关，已带参数的路径原样使用
func (c *SQLiteConfig) DSN() string {
	if strings.Contains(c.Path, "?") {
		return c.Path
	}
	return c.Path + "?_busy_timeout=5000&_foreign_keys=on"
}

// Connect 打开嵌入式 SQLite，连接池限制为单连接
func (c *SQLiteConfig) Connect() (*gorm.DB, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	gormConfig := &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(logger.ParseGormLevel(c.LogLevel)),
	}

	db, err := gorm.Open(sqlite.Open(c.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite 同一时刻只允许一个写者，单连接避免 database is locked
	sqlDB.SetMaxOpenConns(1)

	logger.Info("Database connected",
		zap.String("driver", "sqlite"),
		zap.String("path", c.Path),
	)
	return db, nil
}
