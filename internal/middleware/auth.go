package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/permission"
	"github.com/user/yamdb/internal/service"
	"github.com/user/yamdb/internal/utils"
)

const identityKey = "identity"

// TokenParser 解析访问令牌
type TokenParser interface {
	Parse(token string) (*service.Claims, error)
}

// IdentityResolver 把用户 ID 解析为当前身份
type IdentityResolver interface {
	Resolve(ctx context.Context, userID int64) (*permission.Identity, error)
}

// Authenticate 认证中间件
// 没有令牌时按匿名处理，令牌无效、过期或用户已删除时返回 401
func Authenticate(tokens TokenParser, identities IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			utils.Unauthorized(c, "Given token not valid for any token type")
			c.Abort()
			return
		}

		id, err := identities.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				utils.Unauthorized(c, "User not found")
			} else {
				utils.InternalServerError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// Authorize 在处理器之前执行请求级授权
// 匿名被拒返回 401，已登录被拒返回 403
func Authorize(policy permission.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if policy.Allow(permission.ActionFromMethod(c.Request.Method), id) {
			c.Next()
			return
		}
		if id == nil {
			utils.Unauthorized(c, "")
		} else {
			utils.Forbidden(c, "")
		}
		c.Abort()
	}
}

// extractToken 优先读取 Authorization 头，其次读取 Cookie
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// GetIdentity 从上下文获取身份（未登录返回 nil）
func GetIdentity(c *gin.Context) *permission.Identity {
	if v, exists := c.Get(identityKey); exists {
		if id, ok := v.(*permission.Identity); ok {
			return id
		}
	}
	return nil
}
