package health

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"binfluencer/backend/internal/storage"
	redisstore "binfluencer/backend/internal/storage/redis"
)

// Checker 健康检查器
type Checker struct {
	health healthcheck.Handler
	store  storage.Store
	redis  *redisstore.Client
	log    *zap.Logger
}

// NewChecker 创建健康检查器。redis 可为 nil（未启用限流时）。
func NewChecker(store storage.Store, redis *redisstore.Client, log *zap.Logger) *Checker {
	c := &Checker{
		health: healthcheck.NewHandler(),
		store:  store,
		redis:  redis,
		log:    log,
	}
	c.addChecks()
	return c
}

func (c *Checker) addChecks() {
	c.health.AddLivenessCheck("store", func() error {
		return c.store.Health()
	})

	if c.redis != nil {
		c.health.AddReadinessCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return c.redis.Ping(ctx)
		})
	}

	c.health.AddLivenessCheck("goroutines", func() error {
		if count := runtime.NumGoroutine(); count > 5000 {
			return fmt.Errorf("too many goroutines: %d", count)
		}
		return nil
	})
}

// LiveHandler 存活检查处理器
func (c *Checker) LiveHandler() http.HandlerFunc {
	return c.health.LiveEndpoint
}

// ReadyHandler 就绪检查处理器
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return c.health.ReadyEndpoint
}
