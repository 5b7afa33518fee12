package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"postdrop/backend/internal/auth"
	jwtpkg "postdrop/backend/internal/auth/jwt"
	"postdrop/backend/internal/cache"
	"postdrop/backend/internal/config"
	"postdrop/backend/internal/health"
	"postdrop/backend/internal/logger"
	"postdrop/backend/internal/middleware"
	"postdrop/backend/internal/monitoring"
	"postdrop/backend/internal/provider/guerrilla"
	"postdrop/backend/internal/service"
	"postdrop/backend/internal/storage/memory"
	redisstore "postdrop/backend/internal/storage/redis"
	httptransport "postdrop/backend/internal/transport/http"
)

// main 启动邮箱会话管理 API 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting postdrop server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
		zap.String("provider_api", cfg.Provider.APIURL),
	)

	// 初始化存储层，邮箱目录与用户均在进程内
	store := memory.NewStore()

	// 初始化监控系统
	metrics := monitoring.NewMetrics()

	// 初始化健康检查
	healthChecker := health.NewHealthChecker(store, cfg.Provider.APIURL, log)

	// 初始化上游客户端
	upstream := guerrilla.New(guerrilla.Options{
		APIURL:   cfg.Provider.APIURL,
		Agent:    cfg.Provider.Agent,
		ClientIP: cfg.Provider.ClientIP,
		Timeout:  cfg.Provider.Timeout,
		Logger:   log,
		Metrics:  metrics,
	})

	// 邮件列表缓存：配置了 Redis 时跨实例共享，否则使用进程内缓存
	var messageCache service.MessageListCache
	var localCache *cache.MessageCache
	if cfg.Provider.CacheTTL > 0 {
		if cfg.Redis.Address != "" {
			redisCache, err := redisstore.NewMessageCache(
				cfg.Redis.Address,
				cfg.Redis.Password,
				cfg.Redis.DB,
				cfg.Provider.CacheTTL,
				log,
			)
			if err != nil {
				panic(fmt.Sprintf("failed to connect to redis: %v", err))
			}
			defer redisCache.Close()
			messageCache = redisCache
			log.Info("using redis message cache", zap.String("address", cfg.Redis.Address))
		} else {
			localCache = cache.NewMessageCache(cfg.Provider.CacheTTL)
			defer localCache.Close()
			messageCache = localCache
			log.Info("using in-process message cache", zap.Duration("ttl", cfg.Provider.CacheTTL))
		}
	}

	// 初始化服务层
	mailboxService := service.NewMailboxService(service.MailboxServiceOptions{
		Directory:     store,
		Upstream:      upstream,
		Cache:         messageCache,
		Domains:       cfg.Provider.Domains,
		DefaultDomain: cfg.Provider.DefaultDomain,
		TTL:           cfg.Mailbox.TTL,
		Logger:        log,
		Metrics:       metrics,
	})
	messageService := service.NewMessageService(store, upstream, messageCache, log)

	// 初始化认证服务
	authService := auth.NewService(store)
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// 初始化限流
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, metrics)
	defer rateLimiter.Close()

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:         cfg,
		MailboxService: mailboxService,
		MessageService: messageService,
		AuthService:    authService,
		JWTManager:     jwtManager,
		Metrics:        metrics,
		HealthChecker:  healthChecker,
		RateLimiter:    rateLimiter,
		Logger:         log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 定时清理过期邮箱 goroutine
	group.Go(func() error {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		log.Info("starting expired mailbox cleanup task", zap.Duration("interval", 10*time.Minute))

		for {
			select {
			case <-groupCtx.Done():
				log.Info("cleanup task stopped")
				return nil
			case <-ticker.C:
				if _, err := mailboxService.DeleteExpired(); err != nil {
					log.Error("failed to cleanup expired mailboxes", zap.Error(err))
				}
			}
		}
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
