// Package respond writes the JSON bodies and error envelopes shared by every
// handler.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"profile-report/internal/shared/telemetry"
)

// Context keys written by the middleware package. They are duplicated here
// because middleware depends on respond.
const (
	requestIDKey   = "requestId"
	userIDKey      = "userId"
	reportIDKey    = "reportId"
	reportStateKey = "reportState"
)

// ErrorBody is the payload under the "error" key.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the error envelope: {"error":{code,message,details}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// JSON writes payload with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 JSON payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error aborts the chain with the error envelope.
func Error(c *gin.Context, status int, code, message string, details any) {
	Fail(c, status, code, message, details, nil)
}

// Fail is Error with the underlying cause attached to the log line. The cause
// never reaches the client.
func Fail(c *gin.Context, status int, code, message string, details any, cause error) {
	LogProblem(c, status, code, cause)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// LogProblem emits an http.error line: warn for 4xx, error for 5xx.
func LogProblem(c *gin.Context, status int, code string, cause error) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString(requestIDKey),
	}
	for field, key := range map[string]string{"user_id": userIDKey, "report_id": reportIDKey, "report_state": reportStateKey} {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	if cause != nil {
		fields["error"] = cause.Error()
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
		return
	}
	telemetry.Warn("http.error", fields)
}
