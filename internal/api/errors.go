package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/factorylink/internal/apperr"
	"github.com/lalith-99/factorylink/internal/observ"
	"go.uber.org/zap"
)

// writeError maps the apperr taxonomy onto HTTP. Anything unrecognised is
// logged and answered with a generic 500 so store details never leak.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	_ = c.Error(err)

	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, apperr.ErrRecipientNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "recipient not found"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, apperr.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
	case errors.Is(err, apperr.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "AI service payment required. Please contact support."})
	case errors.Is(err, apperr.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI service unavailable"})
	default:
		observ.FromContext(c.Request.Context(), logger).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// badRequest answers a binding or parsing failure.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
