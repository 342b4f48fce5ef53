package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/middleware"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

// UserRegistrar はユーザーを登録します。
type UserRegistrar interface {
	CreateUser(ctx context.Context, in user.CreateUserInput) (*user.User, error)
}

// TokenConfig は登録時に発行するトークンの設定です。
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// AccountHandler はアカウント API の HTTP 実装です。
type AccountHandler struct {
	users     UserRegistrar
	validator *Validator
	token     TokenConfig
	now       func() time.Time
}

// NewAccountHandler は AccountHandler を生成します。
func NewAccountHandler(users UserRegistrar, v *Validator, token TokenConfig) *AccountHandler {
	return &AccountHandler{users: users, validator: v, token: token, now: time.Now}
}

// Register はユーザーを作成し、そのユーザーのベアラートークンを返します。
// ロール未指定は JOB_SEEKER とし、ADMIN は登録できません。
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		writeError(c, err)
		return
	}

	role := user.RoleJobSeeker
	if req.Role != nil && strings.TrimSpace(*req.Role) != "" {
		parsed, err := user.ParseRole(*req.Role)
		if err != nil {
			writeError(c, err)
			return
		}
		if parsed == user.RoleAdmin {
			writeError(c, fmt.Errorf("%w: %s cannot self-register", user.ErrInvalidRole, parsed))
			return
		}
		role = parsed
	}

	ctx := c.Request.Context()
	created, err := h.users.CreateUser(ctx, user.CreateUserInput{
		Email: req.Email,
		Name:  req.Name,
		Role:  string(role),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := middleware.IssueToken(h.token.Secret, h.token.Issuer, created.ID, h.now(), h.token.TTL)
	if err != nil {
		writeError(c, fmt.Errorf("sign token: %w", err))
		return
	}

	logger.FromContext(ctx).Info("user registered", "user_id", created.ID, "role", created.Role)
	c.JSON(http.StatusCreated, authResponse{
		Token:  token,
		UserID: created.ID,
		Email:  created.Email,
		Name:   created.Name,
		Role:   created.Role,
	})
}
