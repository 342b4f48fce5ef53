package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

// HealthCheck は依存先の疎通確認です。
type HealthCheck func(ctx context.Context) error

// HealthHandler はヘルスチェック API です。
type HealthHandler struct {
	check HealthCheck
}

// NewHealthHandler は HealthHandler を生成します。check が nil の場合は常に UP を返します。
func NewHealthHandler(check HealthCheck) *HealthHandler {
	return &HealthHandler{check: check}
}

// Check は疎通確認の結果を返します。
func (h *HealthHandler) Check(c *gin.Context) {
	if h.check != nil {
		if err := h.check(c.Request.Context()); err != nil {
			logger.FromContext(c.Request.Context()).Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
