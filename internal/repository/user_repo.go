package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"signup-auth/internal/domain"
)

// ErrConfirmationConsumed indica que la confirmacion ya fue usada o expiro
// entre la lectura y la escritura.
var ErrConfirmationConsumed = errors.New("confirmation already consumed")

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// CreateFromConfirmation marca la confirmacion como usada e inserta el
	// usuario en la misma transaccion.
	CreateFromConfirmation(ctx context.Context, confirmationID uuid.UUID, user domain.User) error
}

// PgUserRepository implementa UserRepository usando pgx.
type PgUserRepository struct {
	pool DBPool
}

func NewPgUserRepository(pool DBPool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	return r.scanOne(ctx, query, email)
}

func (r *PgUserRepository) CreateFromConfirmation(ctx context.Context, confirmationID uuid.UUID, user domain.User) (err error) {
	const consume = `
		UPDATE confirmations
		SET used_at = $2
		WHERE id = $1 AND used_at IS NULL AND expires_at > $2
	`
	const insert = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, consume, confirmationID, user.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConfirmationConsumed
	}

	if _, err = tx.Exec(ctx, insert,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgUserRepository) scanOne(ctx context.Context, query string, arg any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = u.CreatedAt.In(time.UTC)
	return u, nil
}
