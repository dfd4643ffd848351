package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"signup-auth/internal/apperr"
	"signup-auth/internal/domain"
	"signup-auth/internal/repository"
	"signup-auth/internal/security"
)

const invalidCredentials = "Invalid credentials"

// AuthService verifica credenciales de usuarios ya registrados.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher security.PasswordHasher
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, hasher security.PasswordHasher) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{logger: logger, users: users, hasher: hasher}
}

func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password string) (domain.SessionUser, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		return domain.SessionUser{}, apperr.Authentication(invalidCredentials)
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SessionUser{}, apperr.Authentication(invalidCredentials)
		}
		return domain.SessionUser{}, apperr.FromDB(err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		s.logger.Error("stored password hash unreadable", zap.String("user_id", user.ID.String()), zap.Error(err))
		return domain.SessionUser{}, err
	}
	if !ok {
		return domain.SessionUser{}, apperr.Authentication(invalidCredentials)
	}
	return user.SessionUser(), nil
}
