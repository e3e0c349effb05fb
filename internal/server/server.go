// Package server 提供ID生成服务的HTTP接口。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/j4hangir/snowflake-id/internal/config"
	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

// Server HTTP服务
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	log    *zap.Logger
}

// New 组装路由、中间件与指标采集
func New(cfg *config.Config, gen core.Generator, log *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(log))

	if cfg.Metrics.Enable {
		reg := prometheus.NewRegistry()
		httpMetrics := NewHTTPMetrics(reg)
		engine.Use(httpMetrics.Middleware())
		reg.MustRegister(NewGeneratorCollector(gen))
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	h := NewHandler(gen)
	api := engine.Group("/api/v1")
	if cfg.Auth.Enabled {
		api.Use(AuthMiddleware(&cfg.Auth))
	}
	api.POST("/ids", h.BatchIDs)
	api.GET("/ids/next", h.NextID)
	api.GET("/ids/:id", h.DecodeID)
	api.GET("/generator", h.GeneratorInfo)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Docs.Enable {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &Server{cfg: cfg, engine: engine, log: log}
}

// Handler 返回底层HTTP处理器（测试用）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 启动HTTP服务并阻塞至ctx取消，随后在配置的超时内优雅关停
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
