package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"signup-auth/internal/config"
	"signup-auth/internal/db"
	"signup-auth/internal/email"
	apihttp "signup-auth/internal/http"
	"signup-auth/internal/repository"
	"signup-auth/internal/security"
	"signup-auth/internal/service"
	"signup-auth/internal/session"
	"signup-auth/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.DBMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	hasher, err := security.NewArgon2Hasher(cfg.SecretKey)
	if err != nil {
		logger.Fatal("password hasher", zap.Error(err))
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	sessionStore := session.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			sessionStore = session.NewRedisStore(redisClient)
		}
		cancel()
	}

	sessions, err := session.NewManager(sessionStore, session.Options{
		Secret: cfg.SessionKey,
		TTL:    cfg.SessionTTL,
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
	}, logger)
	if err != nil {
		logger.Fatal("session manager", zap.Error(err))
	}

	workers := worker.NewPool(cfg.WorkerPoolSize, logger)
	confirmationRepo := repository.NewPgConfirmationRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)

	confirmSvc := service.NewConfirmationService(logger, confirmationRepo, userRepo, hasher, emailSender, service.ConfirmationServiceConfig{
		DomainURL: cfg.DomainURL,
		TTL:       cfg.ConfirmationTTL,
	})
	authSvc := service.NewAuthService(logger, userRepo, hasher)

	registerHandler := apihttp.NewRegistrationHandler(logger, confirmSvc, sessions, workers)
	sessionHandler := apihttp.NewSessionHandler(logger, authSvc, sessions, workers)
	router := apihttp.NewRouter(logger, sessions, registerHandler, sessionHandler, pool)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("addr", cfg.Addr()))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
