package apierror

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Body は API が返すエラー応答の形式です。
type Body struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
}

// Abort はエラー応答を書き込み、後続のハンドラーを中断します。
func Abort(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, Body{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Details:   details,
	})
}
