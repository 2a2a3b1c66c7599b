package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"binfluencer/backend/internal/identity"
)

// Auth Supabase 令牌认证中间件
type Auth struct {
	verifier identity.Verifier
	log      *zap.Logger
}

// NewAuth 创建认证中间件
func NewAuth(verifier identity.Verifier, log *zap.Logger) *Auth {
	return &Auth{verifier: verifier, log: log}
}

// RequireAuth 要求携带有效的 Bearer 令牌。
// 校验通过后把所有者标识与登录邮箱写入请求上下文。
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": http.StatusUnauthorized,
				"msg":  "需要登录认证",
			})
			c.Abort()
			return
		}

		id, err := a.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			a.log.Warn("token verification failed",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": http.StatusUnauthorized,
				"msg":  "无效的访问令牌",
			})
			c.Abort()
			return
		}

		// 将用户信息存储到上下文
		c.Set("userID", id.ID)
		c.Set("email", id.Email)

		c.Next()
	}
}

// extractToken 从 Authorization 头提取 Bearer 令牌
func (a *Auth) extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserID 读取上下文中的所有者标识
func UserID(c *gin.Context) string {
	return c.GetString("userID")
}

// UserEmail 读取上下文中的登录邮箱
func UserEmail(c *gin.Context) string {
	return c.GetString("email")
}
