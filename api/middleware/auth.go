package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/statuswatch/models"
)

// Context keys set by the auth middleware.
const (
	APIKeyKey = "api_key"
	UserIDKey = "user_id"
)

// LocalUser owns every tracker when authentication is disabled.
const LocalUser = "local"

// Auth returns API-key authentication middleware. apiKeys maps each key to
// the user id it authenticates as.
//
// Supports two header styles:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// If apiKeys is empty, every request is rejected: auth was enabled without
// any key to accept.
func Auth(apiKeys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := extractAPIKey(c)
		if key == "" {
			abortUnauthorized(c, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}

		user, valid := apiKeys[key]
		if !valid {
			abortUnauthorized(c, "invalid API key")
			return
		}

		c.Set(APIKeyKey, key)
		c.Set(UserIDKey, user)
		c.Next()
	}
}

// Anonymous attributes every request to LocalUser.
func Anonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, LocalUser)
		c.Next()
	}
}

// UserID returns the authenticated user id.
func UserID(c *gin.Context) string {
	if id := c.GetString(UserIDKey); id != "" {
		return id
	}
	return LocalUser
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: models.ErrCodeUnauthorized, Message: msg},
	})
}

// extractAPIKey tries X-API-Key first, then Authorization: Bearer.
func extractAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
