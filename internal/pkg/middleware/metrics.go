package middleware

import (
	"strconv"
	"time"

	"shop_backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 采集 HTTP 请求指标
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if metrics.Default == nil {
			return
		}

		// 使用路由模板而不是真实路径，避免 :id 导致高基数
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.Default.ObserveHTTP(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
