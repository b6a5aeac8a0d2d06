package middleware

import (
	"net/http"
	"strings"

	"tutor_match_server/pkg/errorx"
	"tutor_match_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// ContextAdminSurface 管理员登录入口在 gin.Context 中的 key
const ContextAdminSurface = "admin_surface"

// AdminAuth 管理员会话校验
// 先取 Authorization: Bearer <token>，websocket 握手无法带头时退回 ?token=
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abortUnauthorized(c, "请先登录管理后台")
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "登录已过期或无效，请重新输入口令")
			return
		}
		c.Set(ContextAdminSurface, claims.Surface)
		c.Next()
	}
}

// BearerToken 从请求头或查询参数取出 Token，都没有时返回空串
func BearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
		"data": nil,
	})
}
