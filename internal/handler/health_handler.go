package handler

import (
	"context"
	"net/http"
	"time"

	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/redis"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler 健康检查
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client // 未启用Redis时为nil
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Check 依赖异常时返回503，data中标明各依赖状态
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{"database": "ok"}
	if err := dbPkg.HealthCheck(ctx, h.db); err != nil {
		deps["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		deps["redis"] = "ok"
		if err := h.redis.HealthCheck(ctx); err != nil {
			deps["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	message := "服务运行正常"
	if status != http.StatusOK {
		message = "依赖服务异常"
	}
	c.JSON(status, response.Response{
		Success: status == http.StatusOK,
		Message: message,
		Data: gin.H{
			"dependencies": deps,
			"time":         time.Now().Format(time.RFC3339),
		},
	})
}
