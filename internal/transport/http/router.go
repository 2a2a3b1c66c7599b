package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"binfluencer/backend/internal/config"
	"binfluencer/backend/internal/health"
	"binfluencer/backend/internal/identity"
	"binfluencer/backend/internal/middleware"
	"binfluencer/backend/internal/monitoring"
	"binfluencer/backend/internal/service"
	redisstore "binfluencer/backend/internal/storage/redis"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config             *config.Config
	CooperationService *service.CooperationService
	ProvisionService   *service.ProvisionService
	MailboxService     *service.MailboxService
	VerifyService      *service.VerifyService
	UserService        *service.UserService
	Verifier           identity.Verifier
	Redis              *redisstore.Client // 可为 nil，禁用限流
	Metrics            *monitoring.Metrics
	Health             *health.Checker
	Logger             *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(1 * 1024 * 1024))
	if deps.Metrics != nil {
		router.Use(middleware.HTTPMetrics(deps.Metrics))
	}

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
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

	// Swagger 文档
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查与指标
	if deps.Health != nil {
		router.GET("/health/live", gin.WrapF(deps.Health.LiveHandler()))
		router.GET("/health/ready", gin.WrapF(deps.Health.ReadyHandler()))
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// 创建处理器
	cooperationHandler := NewCooperationHandler(deps.CooperationService)
	mailboxHandler := NewMailboxHandler(deps.ProvisionService, deps.MailboxService)
	verifyHandler := NewVerifyHandler(deps.VerifyService)
	userHandler := NewUserHandler(deps.UserService)

	auth := middleware.NewAuth(deps.Verifier, deps.Logger)

	// 开通邮箱限流：每用户每小时 5 次
	provisionLimit := func(c *gin.Context) { c.Next() }
	if deps.Redis != nil {
		provisionLimit = middleware.RateLimitByUser(deps.Redis, deps.Logger, "mailbox_create", 5, time.Hour)
	}

	v1 := router.Group("/v1")
	v1.Use(auth.RequireAuth())
	{
		// ========== Cooperation Routes ==========
		v1.GET("/cooperations", cooperationHandler.ListCooperations)
		v1.PATCH("/cooperations/status", cooperationHandler.UpdateStatus)

		// ========== Mailbox Routes ==========
		v1.POST("/mailbox", provisionLimit, mailboxHandler.CreateMailbox)
		v1.GET("/mailbox/list", mailboxHandler.ListMailboxes)

		// ========== Verify Routes ==========
		v1.POST("/verify-bio", verifyHandler.VerifyBio)

		// ========== User Routes ==========
		v1.GET("/user/profile", userHandler.GetProfile)
		v1.PUT("/user/profile", userHandler.UpdateProfile)
	}

	return router
}
