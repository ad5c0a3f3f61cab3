package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 WEIGHTS_DATABASE_TYPE=sqlite
const EnvPrefix = "WEIGHTS"

// Config Application Configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Artifact   ArtifactConfig   `mapstructure:"artifact"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, staging, production
}

type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"` // requests per second
	Burst   int     `mapstructure:"burst"`
}

// Database types
const (
	DatabaseMemory = "memory"
	DatabaseMySQL  = "mysql"
	DatabaseSQLite = "sqlite"
)

type DatabaseConfig struct {
	Type            string        `mapstructure:"type"` // memory, mysql, sqlite
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

// RetryConfig 乐观锁冲突与死锁的重试策略
type RetryConfig struct {
	Enabled                       bool          `mapstructure:"enabled"`
	MaxAttempts                   int           `mapstructure:"max_attempts"`
	InitialDelay                  time.Duration `mapstructure:"initial_delay"`
	MaxDelay                      time.Duration `mapstructure:"max_delay"`
	BackoffFactor                 float64       `mapstructure:"backoff_factor"`
	JitterEnabled                 bool          `mapstructure:"jitter_enabled"`
	RetryOnConcurrentModification bool          `mapstructure:"retry_on_concurrent_modification"`
	RetryOnDeadlock               bool          `mapstructure:"retry_on_deadlock"`
	RetryOnLockTimeout            bool          `mapstructure:"retry_on_lock_timeout"`
}

type LogConfig struct {
	Level    string         `mapstructure:"level"`  // debug, info, warn, error
	Format   string         `mapstructure:"format"` // json, console
	Output   string         `mapstructure:"output"` // stdout, file
	FilePath string         `mapstructure:"file_path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig output=file 时的滚动策略
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// PaginationConfig 列表接口的 size 上限
type PaginationConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// ArtifactConfig 权重文件解析与下载
type ArtifactConfig struct {
	CacheDir        string        `mapstructure:"cache_dir"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	AllowDownload   bool          `mapstructure:"allow_download"`
}

type WorkerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Validate 校验启动前必须满足的配置
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DatabaseMemory, DatabaseMySQL, DatabaseSQLite:
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Database.Type == DatabaseSQLite && c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required for sqlite")
	}
	if c.Pagination.MaxSize <= 0 {
		return fmt.Errorf("pagination.max_size must be positive")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	return nil
}

// Load 读取配置文件与环境变量，configPath 为空时在 . 和 ./config 下查找 config.yaml
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// defaultCacheDir 与桌面端共用的缓存目录 ~/xanylabeling_data
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "xanylabeling_data")
	}
	return filepath.Join(home, "xanylabeling_data")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "weighthub")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.rate", 100)
	v.SetDefault("server.rate_limit.burst", 200)

	v.SetDefault("database.type", DatabaseMemory)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "weighthub")
	v.SetDefault("database.sqlite_path", "weighthub.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("database.retry.enabled", true)
	v.SetDefault("database.retry.max_attempts", 3)
	v.SetDefault("database.retry.initial_delay", "100ms")
	v.SetDefault("database.retry.max_delay", "2s")
	v.SetDefault("database.retry.backoff_factor", 2.0)
	v.SetDefault("database.retry.jitter_enabled", true)
	v.SetDefault("database.retry.retry_on_concurrent_modification", true)
	v.SetDefault("database.retry.retry_on_deadlock", true)
	v.SetDefault("database.retry.retry_on_lock_timeout", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/weighthub.log")
	v.SetDefault("log.rotation.max_size_mb", 10)
	v.SetDefault("log.rotation.max_backups", 5)
	v.SetDefault("log.rotation.max_age_days", 7)
	v.SetDefault("log.rotation.compress", true)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("pagination.max_size", 100)

	v.SetDefault("artifact.cache_dir", defaultCacheDir())
	v.SetDefault("artifact.download_timeout", "30m")
	v.SetDefault("artifact.allow_download", true)

	v.SetDefault("worker.enabled", false)
	v.SetDefault("worker.poll_interval", "2s")
	v.SetDefault("worker.batch_size", 50)
	v.SetDefault("worker.max_retries", 5)
}
