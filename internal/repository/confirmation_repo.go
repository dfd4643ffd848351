package repository

import (
	"context"

	"github.com/google/uuid"

	"signup-auth/internal/domain"
)

// ConfirmationRepository define el contrato de persistencia para confirmaciones.
type ConfirmationRepository interface {
	Create(ctx context.Context, c domain.Confirmation) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Confirmation, error)
}

// PgConfirmationRepository implementa ConfirmationRepository usando pgx.
type PgConfirmationRepository struct {
	pool DBPool
}

func NewPgConfirmationRepository(pool DBPool) *PgConfirmationRepository {
	return &PgConfirmationRepository{pool: pool}
}

func (r *PgConfirmationRepository) Create(ctx context.Context, c domain.Confirmation) error {
	const query = `
		INSERT INTO confirmations (id, email, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Email,
		c.ExpiresAt,
		c.CreatedAt,
	)
	return err
}

func (r *PgConfirmationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Confirmation, error) {
	const query = `
		SELECT id, email, expires_at, used_at, created_at
		FROM confirmations
		WHERE id = $1
	`
	var c domain.Confirmation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Email,
		&c.ExpiresAt,
		&c.UsedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Confirmation{}, err
	}
	return c, nil
}
