package middleware

import (
	"time"

	"meetmap/internal/logging"

	"github.com/gin-gonic/gin"
)

// AccessLog writes one structured line per request. Health checks and
// metrics scrapes are skipped to keep the log readable.
func AccessLog(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	log := logging.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if skipped[c.Request.URL.Path] {
			return
		}
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}
		if id := GetUserID(c); id != 0 {
			attrs = append(attrs, "user_id", id)
		}
		switch {
		case status >= 500:
			log.Error("request", attrs...)
		case status >= 400:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}
