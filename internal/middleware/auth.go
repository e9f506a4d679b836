package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkgrade/core/internal/pkg/response"
)

// Auth returns a middleware that enforces the configured access token.
// An empty token disables the guard: the tool is single-user and binds to
// localhost by default.
func Auth(accessToken string) gin.HandlerFunc {
	expected := strings.TrimSpace(accessToken)
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}
		token := extractToken(c)
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			response.Unauthorized(c)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return normalizeToken(auth)
	}
	return normalizeToken(c.Query("token"))
}

// normalizeToken trims spaces and strips an optional Bearer prefix.
func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
