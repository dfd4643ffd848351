package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signup-auth/internal/domain"
	"signup-auth/internal/service"
	"signup-auth/internal/session"
	"signup-auth/internal/worker"
)

// SessionHandler expone inicio y cierre de sesion.
type SessionHandler struct {
	logger   *zap.Logger
	auth     *service.AuthService
	sessions *session.Manager
	pool     *worker.Pool
}

func NewSessionHandler(logger *zap.Logger, auth *service.AuthService, sessions *session.Manager, pool *worker.Pool) *SessionHandler {
	return &SessionHandler{
		logger:   logger,
		auth:     auth,
		sessions: sessions,
		pool:     pool,
	}
}

// SignIn maneja POST /signin.
func (h *SessionHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signin request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := worker.Do(c.Request.Context(), h.pool, func(ctx context.Context) (domain.SessionUser, error) {
		return h.auth.Authenticate(ctx, req.Email, req.Password)
	})
	if err != nil {
		respondError(c, h.logger, "signin", err)
		return
	}

	session.SetCurrentUser(h.sessions.Renew(c), user)
	if err := h.sessions.Save(c); err != nil {
		h.logger.Error("session save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// SignOut maneja POST /signout.
func (h *SessionHandler) SignOut(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		h.logger.Warn("session destroy failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// Me maneja GET /me.
func (h *SessionHandler) Me(c *gin.Context) {
	user, err := session.GetCurrentUser(session.FromContext(c))
	if err != nil {
		respondError(c, h.logger, "current user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
