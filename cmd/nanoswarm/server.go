// =============================================================================
// 🖥️ Server — 组装编排流水线并管理 HTTP 生命周期
// =============================================================================

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/api/handlers"
	"github.com/vibecaas/nanoswarm/config"
	"github.com/vibecaas/nanoswarm/internal/metrics"
	"github.com/vibecaas/nanoswarm/internal/server"
	"github.com/vibecaas/nanoswarm/internal/telemetry"
	"github.com/vibecaas/nanoswarm/jobs"
	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/llm/openaicompat"
	"github.com/vibecaas/nanoswarm/memory"
	"github.com/vibecaas/nanoswarm/swarm"
	"github.com/vibecaas/nanoswarm/team"
	"github.com/vibecaas/nanoswarm/tool"
	"github.com/vibecaas/nanoswarm/tool/marketing"
)

// Server 持有全部已装配的组件和 HTTP 管理器。
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	orchestrator *swarm.Orchestrator
	collector    *metrics.Collector
	otel         *telemetry.Providers

	httpManager *server.Manager

	// rateLimitCancel 停止限流器的后台清理 goroutine
	rateLimitCancel context.CancelFunc
}

// NewServer 按配置装配完整的编排流水线。
func NewServer(cfg *config.Config, logger *zap.Logger, otelProviders *telemetry.Providers) (*Server, error) {
	collector := metrics.NewCollector(cfg.Telemetry.MetricsNamespace, logger)

	// 工具与团队注册表
	toolReg := tool.NewRegistry(logger)
	if err := marketing.RegisterAll(toolReg); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	teamReg := team.NewRegistry(logger)
	if err := team.RegisterBuiltin(teamReg); err != nil {
		return nil, fmt.Errorf("register teams: %w", err)
	}

	// 推理后端：主备 + 故障转移 + 全局限速
	provider, err := buildProvider(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("build llm provider: %w", err)
	}

	// 线程记忆存储
	memStore := buildMemoryStore(cfg, logger)

	// Job 存储
	jobStore := buildJobStore(cfg.Database, logger)

	// 编排流水线
	var allocProvider llm.Provider
	if cfg.Swarm.LLMAllocation {
		allocProvider = provider
	}
	director := swarm.NewDirector(teamReg, allocProvider, logger)
	executor := swarm.NewExecutor(provider, toolReg, logger).WithToolRounds(cfg.Swarm.ToolRounds)
	dispatcher := swarm.NewDispatcher(executor, cfg.Swarm.ConcurrencyCeiling, logger)
	synthesizer := swarm.NewSynthesizer(logger)

	orchestrator := swarm.NewOrchestrator(
		director, dispatcher, synthesizer,
		teamReg, jobStore, memStore, collector,
		swarm.Options{
			AgentTimeout: cfg.Swarm.AgentTimeout,
			RunTimeout:   cfg.Swarm.RunTimeout,
		},
		logger,
	)

	s := &Server{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		collector:    collector,
		otel:         otelProviders,
	}

	s.httpManager = server.NewManager(
		s.buildHandler(provider, memStore),
		server.Config{
			Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			IdleTimeout:     server.DefaultConfig().IdleTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		logger,
	)

	return s, nil
}

// buildHandler 注册全部路由并套上中间件链。
func (s *Server) buildHandler(provider llm.Provider, memStore memory.Store) http.Handler {
	swarmHandler := handlers.NewSwarmHandler(s.orchestrator, s.logger)
	healthHandler := handlers.NewHealthHandler(s.logger)

	healthHandler.RegisterCheck(healthCheckFunc{
		name: "llm",
		fn: func(ctx context.Context) error {
			_, err := provider.HealthCheck(ctx)
			return err
		},
	})
	if rs, ok := memStore.(*memory.RedisStore); ok {
		healthHandler.RegisterCheck(healthCheckFunc{name: "redis", fn: rs.Ping})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/swarm/run", swarmHandler.HandleRun)
	mux.HandleFunc("GET /api/v1/swarm/runs/{id}", swarmHandler.HandleGetRun)
	mux.HandleFunc("GET /api/v1/swarm/teams", swarmHandler.HandleListTeams)
	mux.HandleFunc("GET /api/v1/swarm/teams/{name}", swarmHandler.HandleGetTeam)
	mux.HandleFunc("GET /api/v1/swarm/topology", swarmHandler.HandleTopology)

	mux.HandleFunc("GET /healthz", healthHandler.HandleHealthz)
	mux.HandleFunc("GET /readyz", healthHandler.HandleReady)
	mux.HandleFunc("GET /version", healthHandler.HandleVersion(Version, BuildTime, GitCommit))
	mux.Handle("GET /metrics", promhttp.Handler())

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		MetricsMiddleware(s.collector),
	}
	if s.cfg.Server.RateLimitRPS > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.rateLimitCancel = cancel
		middlewares = append(middlewares,
			RateLimiter(ctx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger))
	}
	if s.cfg.Telemetry.Enabled {
		middlewares = append(middlewares, OTelTracing())
	}

	return Chain(mux, middlewares...)
}

// Start 启动 HTTP 服务（非阻塞）。
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting",
		zap.Int("port", s.cfg.Server.HTTPPort),
		zap.String("memory_backend", s.cfg.Memory.Backend),
		zap.String("job_store", s.cfg.Database.Driver),
	)
	return s.httpManager.Start()
}

// WaitForShutdown 阻塞等待退出信号，然后按序收尾。
func (s *Server) WaitForShutdown() {
	s.httpManager.WaitForShutdown()
	s.shutdown()
}

func (s *Server) shutdown() {
	if s.rateLimitCancel != nil {
		s.rateLimitCancel()
	}
	if s.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.otel.Shutdown(ctx); err != nil {
			s.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}
}

// =============================================================================
// 🔧 组件装配
// =============================================================================

// buildProvider 构建主备推理后端并套上故障转移。
func buildProvider(cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	primary := openaicompat.New(backendConfig(cfg.Primary), logger)
	backends := []llm.Provider{primary}

	if cfg.Fallback.BaseURL != "" {
		backends = append(backends, openaicompat.New(backendConfig(cfg.Fallback), logger))
	}

	return llm.NewFailoverProvider(backends, cfg.RateLimitRPS, logger)
}

func backendConfig(b config.BackendConfig) openaicompat.Config {
	return openaicompat.Config{
		Name:    b.Name,
		BaseURL: b.BaseURL,
		APIKey:  b.APIKey,
		Model:   b.Model,
		Timeout: b.Timeout,
	}
}

// buildMemoryStore 按配置选择记忆后端；redis 不可达时降级为进程内存储。
func buildMemoryStore(cfg *config.Config, logger *zap.Logger) memory.Store {
	if cfg.Memory.Backend == "redis" {
		store, err := memory.NewRedisStore(memory.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			Window:    cfg.Memory.Window,
			TTL:       cfg.Memory.TTL,
		})
		if err == nil {
			logger.Info("thread memory backed by redis", zap.String("addr", cfg.Redis.Addr))
			return store
		}
		logger.Warn("redis unavailable, falling back to in-process memory", zap.Error(err))
	}
	return memory.NewInMemoryStore(cfg.Memory.Window)
}

// buildJobStore 按配置选择 Job 存储；sqlite 打不开时降级为进程内存储。
func buildJobStore(cfg config.DatabaseConfig, logger *zap.Logger) jobs.Store {
	if cfg.Driver == "sqlite" {
		store, err := jobs.NewSQLiteStore(cfg.Path)
		if err == nil {
			logger.Info("job store backed by sqlite", zap.String("path", cfg.Path))
			return store
		}
		logger.Warn("sqlite unavailable, falling back to in-process job store", zap.Error(err))
	}
	return jobs.NewInMemoryStore()
}

// healthCheckFunc 把函数适配成 handlers.HealthCheck。
type healthCheckFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c healthCheckFunc) Name() string                    { return c.name }
func (c healthCheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }
