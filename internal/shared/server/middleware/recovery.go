package middleware

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"profile-report/internal/shared/server/respond"
)

// Recovery turns a handler panic into a 500 envelope. A stream that has
// already started can only be cut off.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		cause := fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		if c.Writer.Written() {
			respond.LogProblem(c, http.StatusInternalServerError, "internal_error", cause)
			c.Abort()
			return
		}
		respond.Fail(c, http.StatusInternalServerError, "internal_error", "Something went wrong.", nil, cause)
	})
}
