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

	"binfluencer/backend/internal/config"
	"binfluencer/backend/internal/health"
	"binfluencer/backend/internal/identity"
	"binfluencer/backend/internal/logger"
	"binfluencer/backend/internal/mailprovider"
	"binfluencer/backend/internal/monitoring"
	"binfluencer/backend/internal/profile"
	"binfluencer/backend/internal/service"
	"binfluencer/backend/internal/storage"
	"binfluencer/backend/internal/storage/memory"
	redisstore "binfluencer/backend/internal/storage/redis"
	sqlstore "binfluencer/backend/internal/storage/sql"
	httptransport "binfluencer/backend/internal/transport/http"
)

// main 启动红人合作管理后端服务。
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
	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.File,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting binfluencer backend",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store storage.Store
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		sqlStore, err := sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize database storage: %v", err))
		}
		store = sqlStore
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}

	// Redis（可选，用于开通邮箱限流）
	var rdb *redisstore.Client
	if cfg.Redis.Address != "" {
		rdb, err = redisstore.New(&cfg.Redis, log)
		if err != nil {
			log.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
			rdb = nil
		}
	}

	// 监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewChecker(store, rdb, log)

	// 外部协作方客户端
	verifier := identity.NewVerifier(&cfg.Supabase)
	profiles := profile.NewClient(&cfg.Supabase)
	mailClient := mailprovider.NewClient(&cfg.Mail)

	// 初始化服务层
	cooperationService := service.NewCooperationService(store, log).WithMetrics(metrics)
	provisionService := service.NewProvisionService(
		store, profiles, mailClient,
		cfg.Mail.DefaultPassword, cfg.Mail.DefaultQuota, log,
	).WithMetrics(metrics)
	mailboxService := service.NewMailboxService(mailClient, log)
	bioFetcher := service.NewHTTPBioFetcher(cfg.Verify.FetchTimeout)
	verifyService := service.NewVerifyService(
		store, profiles, bioFetcher, cfg.Verify.RatePerMin, log,
	).WithMetrics(metrics)
	userService := service.NewUserService(store, log)

	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:             cfg,
		CooperationService: cooperationService,
		ProvisionService:   provisionService,
		MailboxService:     mailboxService,
		VerifyService:      verifyService,
		UserService:        userService,
		Verifier:           verifier,
		Redis:              rdb,
		Metrics:            metrics,
		Health:             healthChecker,
		Logger:             log,
	})

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         httpAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
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

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		if rdb != nil {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close warning", zap.Error(err))
			}
		}
		if err := store.Close(); err != nil {
			log.Warn("store close warning", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
