package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alpha_miner/configs"
)

// APIKeyAuthMiddleware 验证 "Authorization: Bearer <token>" 请求头。
// 配置里没有 token 就放行所有请求。
func APIKeyAuthMiddleware() gin.HandlerFunc {
	secretToken := configs.GetGlobalConfig().AppConfig.Token
	return func(c *gin.Context) {
		if secretToken == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.String(http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.String(http.StatusUnauthorized, "Authorization header format must be 'Bearer {token}'")
			c.Abort()
			return
		}

		providedToken := parts[1]

		// 使用 subtle.ConstantTimeCompare 来安全地比较令牌，防止时序攻击。
		if subtle.ConstantTimeCompare([]byte(providedToken), []byte(secretToken)) != 1 {
			c.String(http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Next()
	}
}
