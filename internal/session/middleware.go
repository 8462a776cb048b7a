package session

import (
	"net/http"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/user"
	"github.com/gin-gonic/gin"
)

const (
	// IdentityKey 是已认证用户在Gin上下文中的键。
	IdentityKey = "identity"
)

// RequireUserMiddleware 要求请求携带有效的会话Cookie。
// 校验通过后将用户放入Gin上下文，否则以401中断请求。
func RequireUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := VerifyRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未登录或会话已过期"})
			return
		}
		c.Set(IdentityKey, u)
		c.Next()
	}
}

// CurrentUser 从Gin上下文中取出已认证的用户。
func CurrentUser(c *gin.Context) (*user.User, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}
