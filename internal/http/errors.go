package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signup-auth/internal/apperr"
)

// respondError traduce err a su codigo HTTP y un cuerpo {"error": ...}.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	e, ok := apperr.As(err)
	if !ok {
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := e.Status()
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
	} else {
		logger.Info(op+" rejected", zap.String("kind", e.Kind.String()), zap.Int("status", status))
	}
	c.JSON(status, gin.H{"error": e.PublicMessage()})
}
