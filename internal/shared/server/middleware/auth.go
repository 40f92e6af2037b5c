package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile-report/internal/shared/auth"
	"profile-report/internal/shared/server/respond"
)

const (
	userIDKey     = "userId"
	userEmailKey  = "userEmail"
	authMethodKey = "authMethod"

	// AuthBearer and AuthDevHeader are the values of AuthMethodFromContext.
	AuthBearer    = "bearer"
	AuthDevHeader = "dev_header"

	// TokenCookie carries the bearer token for the server-rendered page.
	TokenCookie = "access_token"
)

// Auth verifies the bearer token and stores identity in context. In dev-like
// environments an X-User-Id header is accepted in place of a token.
func Auth(env string, secret []byte) gin.HandlerFunc {
	devLike := isDevLike(env)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		token, hadHeader, ok := bearerToken(c)
		if hadHeader && !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		if token != "" {
			claims, err := auth.Verify(secret, token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			c.Set(userIDKey, claims.Subject)
			c.Set(authMethodKey, AuthBearer)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			c.Next()
			return
		}

		if devLike {
			if userID := strings.TrimSpace(c.GetHeader("X-User-Id")); userID != "" {
				c.Set(userIDKey, userID)
				c.Set(authMethodKey, AuthDevHeader)
				c.Next()
				return
			}
		}

		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Please log in to access this page.", nil)
	}
}

// bearerToken extracts a token from the Authorization header or the page
// cookie. hadHeader reports whether an Authorization header was present.
func bearerToken(c *gin.Context) (token string, hadHeader bool, ok bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", true, false
		}
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		return token, true, token != ""
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(cookie), false, true
	}
	return "", false, true
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// AuthMethodFromContext reports how the caller was identified.
func AuthMethodFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(authMethodKey)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
