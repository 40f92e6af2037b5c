package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const eventStreamMIME = "text/event-stream"

// WantsEventStream reports whether the client asked for server-sent events.
func WantsEventStream(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, eventStreamMIME) == eventStreamMIME
}

// StartEventStream commits a 200 event-stream response. Errors after this
// point travel as events, not status codes.
func StartEventStream(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Content-Type", eventStreamMIME)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
}

// Event writes one named event and flushes it to the client.
func Event(c *gin.Context, name string, payload any) {
	c.SSEvent(name, payload)
	c.Writer.Flush()
}

// ErrorEvent sends the error envelope body as an "error" event and logs it
// like Fail does.
func ErrorEvent(c *gin.Context, status int, code, message string, cause error) {
	LogProblem(c, status, code, cause)
	Event(c, "error", ErrorBody{Code: code, Message: message, Details: gin.H{"status": status}})
}
