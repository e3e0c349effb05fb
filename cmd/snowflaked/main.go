// snowflaked 分布式Snowflake ID生成服务。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/j4hangir/snowflake-id/internal/config"
	"github.com/j4hangir/snowflake-id/internal/logger"
	"github.com/j4hangir/snowflake-id/internal/nodeid"
	"github.com/j4hangir/snowflake-id/internal/server"
	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
	"github.com/j4hangir/snowflake-id/pkg/idgen/registry"
	"github.com/j4hangir/snowflake-id/pkg/idgen/snowflake"
)

const generatorKey = "snowflaked"

// @title Snowflake ID Service
// @version 1.0
// @description 分布式Snowflake ID生成服务，提供ID生成、解码与运行指标查询接口。
// @BasePath /api/v1
func main() {
	configPath := pflag.StringP("config", "c", "", "配置文件路径")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("service exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	allocator, leaseTTL, err := buildAllocator(cfg)
	if err != nil {
		return fmt.Errorf("build allocator: %w", err)
	}

	datacenterID, instanceID, err := allocator.Allocate(ctx)
	if err != nil {
		return fmt.Errorf("allocate instance identity: %w", err)
	}
	log.Info("instance identity allocated",
		zap.String("allocator", cfg.Allocator.Type),
		zap.Int64("datacenter_id", datacenterID),
		zap.Int64("instance_id", instanceID))

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := allocator.Release(releaseCtx); err != nil {
			log.Warn("failed to release instance identity", zap.Error(err))
		}
	}()

	gen, err := registry.GetRegistry().Create(generatorKey, core.GeneratorTypeSnowflake, &snowflake.Config{
		DatacenterID:  datacenterID,
		InstanceID:    instanceID,
		Epoch:         cfg.Generator.Epoch,
		EnableMetrics: cfg.Generator.EnableMetrics,
	})
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}

	// 租约型分配器需要后台续约；续约失败立即退出，
	// 防止标识被其他进程复用后产生重复ID
	runCtx := ctx
	if leaseTTL > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithCancel(ctx)
		go renewLoop(runCtx, cancel, allocator, leaseTTL, log)
	}

	return server.New(cfg, gen, log).Run(runCtx)
}

func buildAllocator(cfg *config.Config) (nodeid.Allocator, time.Duration, error) {
	switch cfg.Allocator.Type {
	case "static":
		a, err := nodeid.NewStatic(cfg.Generator.DatacenterID, cfg.Generator.InstanceID)
		return a, 0, err

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Allocator.Redis.Addr,
			Password: cfg.Allocator.Redis.Password,
			DB:       cfg.Allocator.Redis.DB,
		})
		ttl := cfg.Allocator.Redis.LeaseTTL
		if ttl <= 0 {
			ttl = nodeid.DefaultLeaseTTL
		}
		a, err := nodeid.NewRedisAllocator(client, cfg.Generator.DatacenterID, ttl)
		return a, ttl, err

	case "database":
		db, err := nodeid.OpenDatabase(cfg.Allocator.Database.Driver, cfg.Allocator.Database.DSN)
		if err != nil {
			return nil, 0, err
		}
		ttl := cfg.Allocator.Database.LeaseTTL
		if ttl <= 0 {
			ttl = nodeid.DefaultLeaseTTL
		}
		a, err := nodeid.NewDatabaseAllocator(db, cfg.Generator.DatacenterID, ttl)
		return a, ttl, err

	default:
		return nil, 0, fmt.Errorf("unsupported allocator type: %s", cfg.Allocator.Type)
	}
}

func renewLoop(ctx context.Context, cancel context.CancelFunc, allocator nodeid.Allocator, ttl time.Duration, log *zap.Logger) {
	interval := ttl / 3
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := allocator.Renew(ctx); err != nil {
				log.Error("lease renewal failed, shutting down", zap.Error(err))
				cancel()
				return
			}
		}
	}
}
