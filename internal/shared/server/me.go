package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"profile-report/internal/shared/server/middleware"
	"profile-report/internal/shared/server/respond"
)

type meResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Auth   string `json:"auth"`
	Env    string `json:"env"`
}

// meHandler echoes the identity every report query is scoped to.
func meHandler(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		respond.OK(c, meResponse{
			UserID: userID,
			Email:  middleware.UserEmailFromContext(c),
			Auth:   middleware.AuthMethodFromContext(c),
			Env:    env,
		})
	}
}
