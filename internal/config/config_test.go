package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, int64(0), cfg.Generator.DatacenterID)
	assert.Equal(t, int64(0), cfg.Generator.InstanceID)
	assert.True(t, cfg.Generator.EnableMetrics)
	assert.Equal(t, "static", cfg.Allocator.Type)
	assert.True(t, cfg.Metrics.Enable)
	assert.False(t, cfg.Docs.Enable)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: "127.0.0.1:9090"
  mode: debug
  read_timeout: 3s
  write_timeout: 6s
  shutdown_timeout: 15s
log:
  level: debug
  format: json
  file: /tmp/snowflaked.log
  max_size_mb: 50
  max_backups: 5
  max_age_days: 14
  compress: true
auth:
  enabled: true
  jwt_secret: "test-secret"
  jwt_issuer: "test-issuer"
  token_ttl: 1h
generator:
  datacenter_id: 3
  instance_id: 7
  epoch: 1600000000000
  enable_metrics: true
allocator:
  type: redis
  redis:
    addr: "localhost:6379"
    db: 1
    lease_ttl: 45s
docs:
  enable: true
metrics:
  enable: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 50, cfg.Log.MaxSizeMB)
	assert.True(t, cfg.Log.Compress)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(3), cfg.Generator.DatacenterID)
	assert.Equal(t, int64(7), cfg.Generator.InstanceID)
	assert.Equal(t, int64(1_600_000_000_000), cfg.Generator.Epoch)
	assert.Equal(t, "redis", cfg.Allocator.Type)
	assert.Equal(t, "localhost:6379", cfg.Allocator.Redis.Addr)
	assert.Equal(t, 45*time.Second, cfg.Allocator.Redis.LeaseTTL)
	assert.True(t, cfg.Docs.Enable)
	assert.False(t, cfg.Metrics.Enable)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SNOWFLAKE_SERVER_ADDR", "0.0.0.0:7070")
	t.Setenv("SNOWFLAKE_GENERATOR_DATACENTER_ID", "9")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7070", cfg.Server.Addr)
	assert.Equal(t, int64(9), cfg.Generator.DatacenterID)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "无效运行模式",
			yaml: "server:\n  mode: production\n",
		},
		{
			name: "无效日志级别",
			yaml: "log:\n  level: verbose\n",
		},
		{
			name: "数据中心ID越界",
			yaml: "generator:\n  datacenter_id: 32\n",
		},
		{
			name: "实例ID越界",
			yaml: "generator:\n  instance_id: -1\n",
		},
		{
			name: "负纪元",
			yaml: "generator:\n  epoch: -1\n",
		},
		{
			name: "无效分配器类型",
			yaml: "allocator:\n  type: zookeeper\n",
		},
		{
			name: "启用认证但缺少密钥",
			yaml: "auth:\n  enabled: true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate_AllocatorCrossField(t *testing.T) {
	t.Run("redis类型缺少地址", func(t *testing.T) {
		path := writeConfigFile(t, "allocator:\n  type: redis\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "allocator.redis.addr")
	})

	t.Run("database类型缺少DSN", func(t *testing.T) {
		path := writeConfigFile(t, "allocator:\n  type: database\n  database:\n    driver: sqlite\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "allocator.database")
	})
}
