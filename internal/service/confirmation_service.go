package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"signup-auth/internal/apperr"
	"signup-auth/internal/domain"
	"signup-auth/internal/email"
	"signup-auth/internal/repository"
	"signup-auth/internal/security"
)

// DefaultConfirmationTTL es la vigencia de un enlace de registro.
const DefaultConfirmationTTL = 24 * time.Hour

const invalidConfirmation = "Invalid confirmation"

// ConfirmationService gestiona el ciclo de vida de los tokens de confirmacion.
type ConfirmationService struct {
	logger        *zap.Logger
	confirmations repository.ConfirmationRepository
	users         repository.UserRepository
	hasher        security.PasswordHasher
	emailSender   email.Sender
	domainURL     string
	ttl           time.Duration
	now           func() time.Time
}

type ConfirmationServiceConfig struct {
	DomainURL string
	TTL       time.Duration
}

func NewConfirmationService(
	logger *zap.Logger,
	confirmations repository.ConfirmationRepository,
	users repository.UserRepository,
	hasher security.PasswordHasher,
	emailSender email.Sender,
	cfg ConfirmationServiceConfig,
) *ConfirmationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfirmationTTL
	}
	return &ConfirmationService{
		logger:        logger,
		confirmations: confirmations,
		users:         users,
		hasher:        hasher,
		emailSender:   emailSender,
		domainURL:     cfg.DomainURL,
		ttl:           cfg.TTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create persiste una nueva confirmacion para email.
func (s *ConfirmationService) Create(ctx context.Context, emailAddr string) (domain.Confirmation, error) {
	emailAddr, err := normalizeEmail(emailAddr)
	if err != nil {
		return domain.Confirmation{}, err
	}

	_, err = s.users.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return domain.Confirmation{}, apperr.DuplicateValue("Email already registered")
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.Confirmation{}, apperr.FromDB(err)
	}

	c := domain.NewConfirmation(emailAddr, s.now(), s.ttl)
	if err := s.confirmations.Create(ctx, c); err != nil {
		return domain.Confirmation{}, apperr.FromDB(err)
	}
	return c, nil
}

// Register crea la confirmacion y envia el correo con el enlace. El envio se
// intenta una sola vez.
func (s *ConfirmationService) Register(ctx context.Context, emailAddr string) (domain.Confirmation, error) {
	c, err := s.Create(ctx, emailAddr)
	if err != nil {
		return domain.Confirmation{}, err
	}
	if err := s.SendConfirmationMail(ctx, c); err != nil {
		return domain.Confirmation{}, err
	}
	return c, nil
}

// SendConfirmationMail compone y envia el correo de confirmacion.
func (s *ConfirmationService) SendConfirmationMail(ctx context.Context, c domain.Confirmation) error {
	if s.emailSender == nil {
		return apperr.Process("Error sending email")
	}
	msg := email.NewConfirmationMessage(s.domainURL, c)
	if err := s.emailSender.Send(ctx, msg); err != nil {
		s.logger.Warn("send confirmation email failed",
			zap.Error(err),
			zap.String("confirmation_id", c.ID.String()),
		)
		return apperr.Wrap(apperr.Process("Error sending email"), err)
	}
	s.logger.Info("confirmation email sent", zap.String("confirmation_id", c.ID.String()))
	return nil
}

// Lookup devuelve una confirmacion canjeable. Tokens inexistentes, expirados
// o ya usados producen el mismo error.
func (s *ConfirmationService) Lookup(ctx context.Context, tokenID string) (domain.Confirmation, error) {
	id, err := uuid.Parse(strings.TrimSpace(tokenID))
	if err != nil {
		return domain.Confirmation{}, apperr.FromUUID(err)
	}

	c, err := s.confirmations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Confirmation{}, apperr.Authentication(invalidConfirmation)
		}
		return domain.Confirmation{}, apperr.FromDB(err)
	}
	if !c.Redeemable(s.now()) {
		return domain.Confirmation{}, apperr.Authentication(invalidConfirmation)
	}
	return c, nil
}

// Redeem canjea el token: crea el usuario con la contrasena hasheada y marca
// la confirmacion como usada.
func (s *ConfirmationService) Redeem(ctx context.Context, tokenID, password string) (domain.SessionUser, error) {
	if strings.TrimSpace(password) == "" {
		return domain.SessionUser{}, apperr.Generic("Password is required")
	}

	c, err := s.Lookup(ctx, tokenID)
	if err != nil {
		return domain.SessionUser{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.SessionUser{}, err
	}

	user := domain.User{
		ID:           uuid.New(),
		Email:        c.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateFromConfirmation(ctx, c.ID, user); err != nil {
		if errors.Is(err, repository.ErrConfirmationConsumed) {
			return domain.SessionUser{}, apperr.Authentication(invalidConfirmation)
		}
		return domain.SessionUser{}, apperr.FromDB(err)
	}

	s.logger.Info("account created", zap.String("user_id", user.ID.String()))
	return user.SessionUser(), nil
}

func normalizeEmail(raw string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" {
		return "", apperr.Generic("Email is required")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return "", apperr.Generic("Invalid email")
	}
	return addr, nil
}
