package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"postdrop/backend/internal/auth"
	jwtpkg "postdrop/backend/internal/auth/jwt"
	"postdrop/backend/internal/config"
	"postdrop/backend/internal/health"
	"postdrop/backend/internal/middleware"
	"postdrop/backend/internal/monitoring"
	"postdrop/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config         *config.Config
	MailboxService *service.MailboxService
	MessageService *service.MessageService
	AuthService    *auth.Service
	JWTManager     *jwtpkg.Manager
	Metrics        *monitoring.Metrics
	HealthChecker  *health.HealthChecker
	RateLimiter    *middleware.RateLimiter
	Logger         *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	if deps.Metrics != nil {
		monitor := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)
		router.Use(monitor.PanicRecovery())
		router.Use(monitor.HTTPMetrics())
	} else {
		router.Use(gin.Recovery())
	}
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(1 * 1024 * 1024))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 允许所有来源时必须关闭凭证支持
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Limit())
	}

	handler := &Handler{
		mailboxes: deps.MailboxService,
		messages:  deps.MessageService,
		log:       deps.Logger,
	}
	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager, deps.Logger)
	publicHandler := NewPublicHandler(deps.MailboxService)

	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)

	// 健康检查与指标
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.HealthChecker != nil {
		router.GET("/health/live", gin.WrapF(deps.HealthChecker.LiveHandler()))
		router.GET("/health/ready", gin.WrapF(deps.HealthChecker.ReadyHandler()))
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	// V1 API
	v1 := router.Group("/v1")
	{
		// ========== Public Routes ==========
		publicRoutes := v1.Group("/public")
		{
			publicRoutes.GET("/domains", publicHandler.GetAvailableDomains)
		}

		// ========== Auth Routes ==========
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
			authRoutes.GET("/me", jwtAuth.RequireAuth(), authHandler.Me)
		}

		// ========== Mailbox Routes ==========
		mailboxRoutes := v1.Group("/mailboxes")
		mailboxRoutes.Use(jwtAuth.RequireAuth())
		{
			mailboxRoutes.POST("", handler.createMailbox)
			mailboxRoutes.GET("", handler.listMailboxes)
			mailboxRoutes.GET("/:id", handler.getMailbox)
			mailboxRoutes.DELETE("/:id", handler.deleteMailbox)

			mailboxRoutes.GET("/:id/messages", handler.listMessages)
			mailboxRoutes.GET("/:id/messages/:messageId", handler.getMessage)
		}
	}

	return router
}
