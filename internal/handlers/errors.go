package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"findsync/internal/services"
)

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation, services.KindUpstream:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ..., "details": ...}. Causes of storage
// failures are logged and never sent to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		svcErr = &services.Error{Kind: services.KindStorage, Message: "internal error", Err: err}
	}

	status := statusFor(svcErr.Kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", requestIDFromContext(c)),
			zap.String("path", c.FullPath()),
			zap.String("trace_id", trace.SpanContextFromContext(c.Request.Context()).TraceID().String()),
			zap.Error(err),
		)
	}

	body := gin.H{"error": svcErr.Message}
	if svcErr.Details != "" {
		body["details"] = svcErr.Details
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
