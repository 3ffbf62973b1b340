package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nthumods/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数（如 2<<20 = 2MB）
//
// Content-Length 已超限时直接拒绝；未声明长度的请求由 MaxBytesReader 截断，
// 读取时的 *http.MaxBytesError 由 Handler 绑定层转为 413。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
