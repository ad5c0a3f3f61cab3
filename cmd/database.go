package cmd

import (
	"fmt"

	"weighthub/config"
	"weighthub/infrastructure/persistence/gormdb"
	"weighthub/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenDatabase 按 database.type 连接 MySQL 或 SQLite，memory 类型返回错误。
// 开发环境或开启 auto_migrate 时自动建表。
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Type {
	case config.DatabaseMySQL:
		db, err = gormdb.NewMySQLConfig(&cfg.Database).Connect()
	case config.DatabaseSQLite:
		db, err = gormdb.NewSQLiteConfig(&cfg.Database).Connect()
	default:
		return nil, fmt.Errorf("database type %q has no SQL backend", cfg.Database.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Database.Type, err)
	}

	if cfg.IsDevelopment() || cfg.Database.AutoMigrate {
		if err := gormdb.AutoMigrate(db); err != nil {
			closeDatabase(db)
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
		logger.Info("Database schema migrated")
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
}
