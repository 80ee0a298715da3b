package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"findsync/internal/auth"
)

// ClaimsKey is the gin context key holding the verified *auth.Claims.
const ClaimsKey = "claims"

// AuthMiddleware validates the bearer credential in the Authorization header.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the claims set by AuthMiddleware, or nil.
func ClaimsFromContext(c *gin.Context) *auth.Claims {
	if val, ok := c.Get(ClaimsKey); ok {
		if claims, ok := val.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
