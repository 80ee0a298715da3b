package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"findsync/internal/middleware"
	"findsync/internal/services"
)

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(middleware.RequestIDKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader(middleware.RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(middleware.RequestIDKey, requestID)
	return requestID
}

// userIDFromContext returns the caller's external identity for audit lines.
func userIDFromContext(c *gin.Context) *string {
	if claims := middleware.ClaimsFromContext(c); claims != nil && claims.ExternalID() != "" {
		id := claims.ExternalID()
		return &id
	}
	return nil
}

func identityFromContext(c *gin.Context) services.Identity {
	return services.IdentityFromClaims(middleware.ClaimsFromContext(c))
}
