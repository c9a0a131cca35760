package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const UserIDHeader = "X-User-ID"

// UserRequired 租户解析在系统外部完成，这里只要求带一个稳定的用户标识。
// 放进 Context 供 handler 取用。
func UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "missing " + UserIDHeader + " header"})
			return
		}
		c.Set("userID", uid)
		c.Next()
	}
}

// UserID 从 Context 取用户标识，UserRequired 之后一定存在
func UserID(c *gin.Context) string {
	v, _ := c.Get("userID")
	uid, _ := v.(string)
	return uid
}
