// Package middleware 跨域与限流中间件
package middleware

import (
	"net/http"
	"sync"

	"cme-platform/pkg/errs"
	"cme-platform/pkg/logger"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 限流器数量上限，超过后整体重建
const maxTrackedClients = 10000

// RateLimiter 按客户端IP限流
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter 创建限流器
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		if len(rl.limiters) >= maxTrackedClients {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Middleware 超出速率时返回 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.getLimiter(key).Allow() {
			logger.Warn("请求被限流",
				zap.String("client_ip", key),
				zap.String("path", c.Request.URL.Path),
			)
			response.Fail(c, &errs.AppError{
				Code:    errs.CodeTooManyRequests,
				Message: "请求过于频繁，请稍后再试",
				Status:  http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}
