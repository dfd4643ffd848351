package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signup-auth/internal/session"
)

// Pinger verifica dependencias para /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	sessions *session.Manager,
	registerH *RegistrationHandler,
	sessionH *SessionHandler,
	db Pinger,
) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(Templates())

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	r.GET("/healthz", healthHandler(db))

	app := r.Group("/", sessions.Middleware())
	app.GET("/register", registerH.ShowRegisterForm)
	app.POST("/register", registerH.SendConfirmation)
	app.GET("/register/:id", registerH.ShowPasswordForm)
	app.POST("/register/:id", registerH.CreateAccount)

	app.POST("/signin", sessionH.SignIn)
	app.POST("/signout", sessionH.SignOut)
	app.GET("/me", sessionH.Me)

	return r
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
