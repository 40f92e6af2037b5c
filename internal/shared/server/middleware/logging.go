package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"profile-report/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	ReportIDKey    = "reportId"
	ReportStateKey = "reportState"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if reportID := c.GetString(ReportIDKey); reportID != "" {
			fields["report_id"] = reportID
		}
		if state := c.GetString(ReportStateKey); state != "" {
			fields["report_state"] = state
		}
		telemetry.Info("request.complete", fields)
	}
}
