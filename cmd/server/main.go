// Dienstplan 排班引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dienstplan/dienstplan/internal/config"
	"github.com/dienstplan/dienstplan/internal/database"
	"github.com/dienstplan/dienstplan/internal/handler"
	"github.com/dienstplan/dienstplan/internal/metrics"
	"github.com/dienstplan/dienstplan/internal/middleware"
	"github.com/dienstplan/dienstplan/internal/repository"
	"github.com/dienstplan/dienstplan/internal/security"
	"github.com/dienstplan/dienstplan/internal/tenant"
	"github.com/dienstplan/dienstplan/pkg/generation"
	"github.com/dienstplan/dienstplan/pkg/logger"
	"github.com/dienstplan/dienstplan/pkg/model"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	fmt.Printf("Dienstplan 排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("数据库初始化失败")
	}
	defer db.Close()

	// 仓储
	coverageRepo := repository.NewCoverageRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	// 生成管线：外部服务 + 截止控制 + 缓存失效
	svc := generation.NewHTTPService(cfg.AIService.BaseURL, cfg.AIService.Timeout)
	pipeline := generation.NewPipeline(svc,
		generation.WithTimeout(cfg.Generation.Timeout),
		generation.WithStepPause(cfg.Generation.StepPause),
		generation.WithInvalidator(func(version int, dateRange model.DateRange) {
			logger.Info().
				Int("version", version).
				Str("start_date", dateRange.StartDate).
				Str("end_date", dateRange.EndDate).
				Msg("排班查询缓存已失效")
		}),
	)

	// 处理器
	coverageHandler := handler.NewCoverageHandler(coverageRepo)
	shiftHandler := handler.NewShiftHandler(shiftRepo)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo)
	scheduleHandler := handler.NewScheduleHandler(scheduleRepo)
	generateHandler := handler.NewGenerateHandler(pipeline, scheduleRepo)
	validateHandler := handler.NewValidateHandler(nil)
	timelineHandler := handler.NewTimelineHandler()
	statsHandler := handler.NewStatsHandler(coverageRepo)
	libraryHandler := handler.NewLibraryHandler()

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		if err := db.Health(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":"%s","service":"dienstplan"}`, status)
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "Dienstplan 排班引擎 API v1",
			"endpoints": {
				"coverage": {
					"list": "GET /api/v1/coverage",
					"create": "POST /api/v1/coverage",
					"get": "GET /api/v1/coverage/{id}",
					"update": "PUT /api/v1/coverage/{id}",
					"delete": "DELETE /api/v1/coverage/{id}",
					"bulk": "PUT /api/v1/coverage/bulk"
				},
				"shifts": {
					"list": "GET /api/v1/shifts",
					"create": "POST /api/v1/shifts",
					"item": "GET|PUT|DELETE /api/v1/shifts/{id}"
				},
				"employees": {
					"list": "GET /api/v1/employees",
					"create": "POST /api/v1/employees",
					"item": "GET|PUT|DELETE /api/v1/employees/{id}"
				},
				"schedules": {
					"list": "GET /api/v1/schedules",
					"generate": "POST /api/v1/schedules/generate",
					"validate": "POST /api/v1/schedules/validate"
				},
				"timeline": "POST /api/v1/timeline",
				"stats": {
					"coverage": "GET /api/v1/stats/coverage",
					"workload": "POST /api/v1/stats/workload"
				},
				"constraints": {
					"library": "GET /api/v1/constraints/library",
					"defaults": "GET /api/v1/constraints/defaults"
				}
			}
		}`))
	})

	// 覆盖需求 CRUD；bulk 精确匹配优先于单项前缀路由
	mux.HandleFunc("/api/v1/coverage", coverageHandler.Collection)
	mux.HandleFunc("/api/v1/coverage/bulk", coverageHandler.Bulk)
	mux.HandleFunc("/api/v1/coverage/", coverageHandler.Item)

	// 班次模板与员工 CRUD
	mux.HandleFunc("/api/v1/shifts", shiftHandler.Collection)
	mux.HandleFunc("/api/v1/shifts/", shiftHandler.Item)
	mux.HandleFunc("/api/v1/employees", employeeHandler.Collection)
	mux.HandleFunc("/api/v1/employees/", employeeHandler.Item)

	// 排班查询、生成与规则校验
	mux.HandleFunc("/api/v1/schedules", scheduleHandler.List)
	mux.HandleFunc("/api/v1/schedules/generate", generateHandler.Generate)
	mux.HandleFunc("/api/v1/schedules/validate", validateHandler.Validate)

	// 时间轴
	mux.HandleFunc("/api/v1/timeline", timelineHandler.Timeline)

	// 统计分析
	mux.HandleFunc("/api/v1/stats/coverage", statsHandler.CoverageStats)
	mux.HandleFunc("/api/v1/stats/workload", statsHandler.Workload)

	// 开关库
	mux.HandleFunc("/api/v1/constraints/library", libraryHandler.Library)
	mux.HandleFunc("/api/v1/constraints/defaults", libraryHandler.Defaults)

	// ========================================
	// 监控端点
	// ========================================

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// 执行顺序：requestID -> rateLimit -> cors -> recovery -> logging -> handler
	// ========================================

	var root http.Handler = middleware.Logging(mux)
	root = middleware.Recovery(root)
	root = middleware.CORS(root)
	root = rateLimitMiddleware(security.NewRateLimiter(cfg.API.RateLimit, time.Minute))(root)
	root = middleware.RequestID(root)

	// API密钥认证按需开启
	if os.Getenv("API_KEY_AUTH") == "true" {
		root = buildAuthMiddleware(cfg)(root)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("env", cfg.App.Env).
			Str("version", Version).
			Str("api_docs", fmt.Sprintf("http://localhost:%d/api/v1/", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// rateLimitMiddleware 全局限流中间件，按客户端地址计数
func rateLimitMiddleware(limiter *security.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.RemoteAddr) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":   true,
					"code":    "RATE_LIMITED",
					"message": "请求过于频繁，请稍后重试",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// buildAuthMiddleware 构建API密钥认证链
// 启动时生成默认租户与密钥并打印到日志，便于开发环境直接使用
func buildAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	keyManager := security.NewAPIKeyManager()
	tenantManager := tenant.NewManager()

	defaultTenant := tenant.CreateDefaultTenant()
	if err := tenantManager.Register(defaultTenant); err != nil {
		logger.Fatal().Err(err).Msg("注册默认租户失败")
	}

	key, err := keyManager.GenerateKey(defaultTenant.Code, "bootstrap", []string{"*"}, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("生成初始API密钥失败")
	}
	logger.Info().Str("api_key", key.Key).Msg("初始API密钥已生成")

	return middleware.Auth(&middleware.AuthConfig{
		APIKeyManager:   keyManager,
		TenantManager:   tenantManager,
		RateLimiter:     security.NewRateLimiter(cfg.API.RateLimit, time.Minute),
		SkipPaths:       []string{"/health", "/version", cfg.Metrics.Path},
		EnableRateLimit: false,
	})
}
