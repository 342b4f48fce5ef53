package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/apierror"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/authz"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

const actorKey = "jobboard.actor"

// ErrInvalidToken はベアラートークンが検証できない場合に返却されます。
var ErrInvalidToken = errors.New("invalid bearer token")

// UserFinder は認証済みユーザーを解決します。
type UserFinder interface {
	GetUser(ctx context.Context, in user.GetUserInput) (*user.User, error)
}

// Authenticator は HS256 署名のベアラートークンを検証し、操作主体を確定します。
// トークンの subject はユーザー ID です。
type Authenticator struct {
	secret []byte
	users  UserFinder
	parser *jwt.Parser
}

// NewAuthenticator は Authenticator を生成します。issuer が空の場合は発行者を検証しません。
func NewAuthenticator(secret, issuer string, users UserFinder, opts ...jwt.ParserOption) *Authenticator {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}
	parserOpts = append(parserOpts, opts...)

	return &Authenticator{
		secret: []byte(secret),
		users:  users,
		parser: jwt.NewParser(parserOpts...),
	}
}

// Subject はトークンを検証し、subject を返します。
func (a *Authenticator) Subject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject is empty", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Middleware は Authorization ヘッダーから操作主体を解決してコンテキストへ格納します。
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			apierror.Abort(c, http.StatusUnauthorized, "Authentication failed", "authorization header missing or invalid")
			return
		}

		subject, err := a.Subject(strings.TrimSpace(token))
		if err != nil {
			logger.FromContext(ctx).Warn("bearer token rejected", "error", err)
			apierror.Abort(c, http.StatusUnauthorized, "Authentication failed", ErrInvalidToken.Error())
			return
		}

		u, err := a.users.GetUser(ctx, user.GetUserInput{ID: subject})
		switch {
		case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrInvalidID):
			logger.FromContext(ctx).Warn("token subject not found", "subject", subject)
			apierror.Abort(c, http.StatusUnauthorized, "Authentication failed", "unknown user")
			return
		case err != nil:
			logger.FromContext(ctx).Error("failed to resolve user", "subject", subject, "error", err)
			apierror.Abort(c, http.StatusInternalServerError, "Unexpected error occurred", "")
			return
		}

		SetActor(c, ActorFromUser(u))
		c.Next()
	}
}

// ActorFromUser はユーザーを認可判定用の Actor に変換します。
func ActorFromUser(u *user.User) authz.Actor {
	return authz.Actor{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
}

// SetActor は操作主体を gin とリクエストのコンテキストへ格納します。
func SetActor(c *gin.Context, actor authz.Actor) {
	c.Set(actorKey, actor)
	c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), actor.ID))
}

// ActorFrom は格納済みの操作主体を返します。
func ActorFrom(c *gin.Context) (authz.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return authz.Actor{}, false
	}
	actor, ok := v.(authz.Actor)
	return actor, ok
}

// RequireRoles は操作主体のロールが roles のいずれかであることを要求します。
func RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			apierror.Abort(c, http.StatusUnauthorized, "Authentication failed", "user not authenticated")
			return
		}
		if !slices.Contains(roles, actor.Role) {
			logger.FromContext(c.Request.Context()).Warn("role not permitted", "role", actor.Role, "path", c.FullPath())
			apierror.Abort(c, http.StatusForbidden, "Access denied", "insufficient role")
			return
		}
		c.Next()
	}
}

// IssueToken は subject を持つ HS256 トークンを発行します。
func IssueToken(secret, issuer, subject string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
