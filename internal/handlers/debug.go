package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"findsync/internal/auth"
	"findsync/internal/telemetry"
)

// SchemaInvalidator drops a cached schema capability result.
type SchemaInvalidator interface {
	Invalidate()
}

// DebugDeps are the collaborators of the debug-only routes. Nil fields
// disable the matching route's behavior.
type DebugDeps struct {
	Emitter  *telemetry.AuditEmitter
	Schema   SchemaInvalidator
	Verifier *auth.Verifier
}

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRouter, deps DebugDeps, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if deps.Emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		deps.Emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/debug/schema/refresh", func(c *gin.Context) {
		if deps.Schema == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "schema probe not configured"})
			return
		}
		deps.Schema.Invalidate()
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Issues a short-lived credential for local testing.
	router.POST("/debug/token", func(c *gin.Context) {
		if deps.Verifier == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verifier not configured"})
			return
		}
		var req struct {
			Subject string `json:"sub"`
			Name    string `json:"name"`
			Email   string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Subject == "" {
			badRequest(c, "sub is required")
			return
		}
		token, err := deps.Verifier.Sign(req.Subject, req.Name, req.Email, time.Hour)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})
}
