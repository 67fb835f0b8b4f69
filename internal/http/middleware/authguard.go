// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the JWT bearer-token guard for authenticated routes.
// On success it stashes the user identity in the Gin context under the
// "userID" and "userEmail" keys, where downstream middleware (rate limiter
// keying, access logs) and handlers pick it up.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/grammar-azi/user-service/internal/auth"
)

// AccessTokenParser verifies an access token and returns its claims.
// *auth.Manager satisfies it via ParseAccess.
type AccessTokenParser interface {
	ParseAccess(token string) (*auth.Claims, error)
}

// AuthRequired returns a middleware that rejects requests without a valid
// Bearer access token. Failures produce the standard error envelope with a
// 401 status.
func AuthRequired(parser AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		claims, err := parser.ParseAccess(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <t>" header.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
