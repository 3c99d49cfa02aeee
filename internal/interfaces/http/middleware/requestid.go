// Package middleware 提供 HTTP 中间件
package middleware

import (
	"knowledge-navigator-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"
	// maxRequestIDLength 超长的外来 ID 直接丢弃，防止日志污染
	maxRequestIDLength = 64
)

// RequestID 请求 ID 注入中间件
// 透传合法的外来 ID，否则生成新的；写入 Gin/Logger Context 与响应头。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := sanitizeRequestID(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)

		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// sanitizeRequestID 过滤不可打印字符与超长 ID
func sanitizeRequestID(id string) string {
	if len(id) == 0 || len(id) > maxRequestIDLength {
		return ""
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return id
}
