// Package config 加载并校验服务配置。
//
// 配置来源优先级：环境变量（SNOWFLAKE_前缀） > 配置文件 > 默认值。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 服务完整配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Allocator AllocatorConfig `mapstructure:"allocator"`
	Docs      DocsConfig      `mapstructure:"docs"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=console json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig 认证配置
// 启用后请求需携带 Authorization: Bearer <jwt> 或 X-API-Key 头
type AuthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required_if=Enabled true"`
	JWTIssuer  string        `mapstructure:"jwt_issuer"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"min=0"`
	APIKeyHash string        `mapstructure:"api_key_hash"`
}

// GeneratorConfig 生成器配置
type GeneratorConfig struct {
	DatacenterID  int64 `mapstructure:"datacenter_id" validate:"min=0,max=31"`
	InstanceID    int64 `mapstructure:"instance_id" validate:"min=0,max=31"`
	Epoch         int64 `mapstructure:"epoch" validate:"min=0"`
	EnableMetrics bool  `mapstructure:"enable_metrics"`
}

// AllocatorConfig 实例标识分配器配置
type AllocatorConfig struct {
	Type     string         `mapstructure:"type" validate:"oneof=static redis database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
}

// RedisConfig Redis租约分配器配置
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"min=0"`
	LeaseTTL time.Duration `mapstructure:"lease_ttl" validate:"min=0"`
}

// DatabaseConfig 数据库租约分配器配置
type DatabaseConfig struct {
	Driver   string        `mapstructure:"driver" validate:"omitempty,oneof=mysql postgres sqlite"`
	DSN      string        `mapstructure:"dsn"`
	LeaseTTL time.Duration `mapstructure:"lease_ttl" validate:"min=0"`
}

// DocsConfig Swagger文档开关
type DocsConfig struct {
	Enable bool `mapstructure:"enable"`
}

// MetricsConfig Prometheus指标开关
type MetricsConfig struct {
	Enable bool `mapstructure:"enable"`
}

// Load 从指定路径加载配置文件并完成校验
// path为空时按默认搜索路径查找config.yaml，找不到则仅使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("SNOWFLAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 未显式指定路径时允许没有配置文件
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 基于结构体标签校验配置合法性
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: field '%s' failed rule '%s'", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	// 跨字段约束：类型选定后对应的连接参数必填
	switch c.Allocator.Type {
	case "redis":
		if c.Allocator.Redis.Addr == "" {
			return fmt.Errorf("invalid config: allocator.redis.addr is required when allocator.type is redis")
		}
	case "database":
		if c.Allocator.Database.Driver == "" || c.Allocator.Database.DSN == "" {
			return fmt.Errorf("invalid config: allocator.database.driver and dsn are required when allocator.type is database")
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "snowflaked")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.api_key_hash", "")

	v.SetDefault("generator.datacenter_id", 0)
	v.SetDefault("generator.instance_id", 0)
	v.SetDefault("generator.epoch", 0)
	v.SetDefault("generator.enable_metrics", true)

	v.SetDefault("allocator.type", "static")
	v.SetDefault("allocator.redis.addr", "")
	v.SetDefault("allocator.redis.password", "")
	v.SetDefault("allocator.redis.db", 0)
	v.SetDefault("allocator.redis.lease_ttl", 30*time.Second)
	v.SetDefault("allocator.database.driver", "")
	v.SetDefault("allocator.database.dsn", "")
	v.SetDefault("allocator.database.lease_ttl", 30*time.Second)

	v.SetDefault("docs.enable", false)
	v.SetDefault("metrics.enable", true)
}
