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

// RegistrationHandler mantiene dependencias para los endpoints de registro.
type RegistrationHandler struct {
	logger   *zap.Logger
	confirms *service.ConfirmationService
	sessions *session.Manager
	pool     *worker.Pool
}

func NewRegistrationHandler(logger *zap.Logger, confirms *service.ConfirmationService, sessions *session.Manager, pool *worker.Pool) *RegistrationHandler {
	return &RegistrationHandler{
		logger:   logger,
		confirms: confirms,
		sessions: sessions,
		pool:     pool,
	}
}

// ShowRegisterForm maneja GET /register.
func (h *RegistrationHandler) ShowRegisterForm(c *gin.Context) {
	if session.IsSignedIn(session.FromContext(c)) {
		toHome(c)
		return
	}
	c.HTML(http.StatusOK, "register.html", nil)
}

// SendConfirmation maneja POST /register.
func (h *RegistrationHandler) SendConfirmation(c *gin.Context) {
	if session.IsSignedIn(session.FromContext(c)) {
		c.Status(http.StatusBadRequest)
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, err := worker.Do(c.Request.Context(), h.pool, func(ctx context.Context) (domain.Confirmation, error) {
		return h.confirms.Register(ctx, req.Email)
	})
	if err != nil {
		respondError(c, h.logger, "send confirmation", err)
		return
	}

	c.Status(http.StatusOK)
}

// ShowPasswordForm maneja GET /register/:id. Cualquier token no canjeable
// redirige al inicio del registro.
func (h *RegistrationHandler) ShowPasswordForm(c *gin.Context) {
	if session.IsSignedIn(session.FromContext(c)) {
		toHome(c)
		return
	}

	pathID := c.Param("id")
	confirmation, err := worker.Do(c.Request.Context(), h.pool, func(ctx context.Context) (domain.Confirmation, error) {
		return h.confirms.Lookup(ctx, pathID)
	})
	if err != nil {
		c.Redirect(http.StatusMovedPermanently, "/register")
		return
	}

	c.HTML(http.StatusOK, "password.html", gin.H{
		"PathID": pathID,
		"Email":  confirmation.Email,
	})
}

// CreateAccount maneja POST /register/:id.
func (h *RegistrationHandler) CreateAccount(c *gin.Context) {
	sess := session.FromContext(c)
	if session.IsSignedIn(sess) {
		c.Status(http.StatusBadRequest)
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create account request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pathID := c.Param("id")
	user, err := worker.Do(c.Request.Context(), h.pool, func(ctx context.Context) (domain.SessionUser, error) {
		return h.confirms.Redeem(ctx, pathID, req.Password)
	})
	if err != nil {
		respondError(c, h.logger, "create account", err)
		return
	}

	session.SetCurrentUser(h.sessions.Renew(c), user)
	if err := h.sessions.Save(c); err != nil {
		// La cuenta ya existe; el usuario puede iniciar sesion manualmente.
		h.logger.Error("session save failed", zap.Error(err), zap.String("user_id", user.ID))
	}

	c.JSON(http.StatusCreated, user)
}

func toHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/me")
}
