package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

// HeaderRequestID はリクエスト ID を受け渡すヘッダーです。
const HeaderRequestID = "X-Request-ID"

// RequestID はリクエスト ID を採番してコンテキストと応答ヘッダーに設定します。
// 受信したヘッダーが UUID 形式であればそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// RequestLogger はリクエストごとにメソッド、パス、ステータス、処理時間を記録します。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.HTTPLog(logger.FromContext(c.Request.Context()), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
