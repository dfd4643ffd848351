package domain

import (
	"time"

	"github.com/google/uuid"
)

// Confirmation vincula un token de un solo uso con un email hasta ExpiresAt.
type Confirmation struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewConfirmation(email string, now time.Time, ttl time.Duration) Confirmation {
	now = now.UTC()
	return Confirmation{
		ID:        uuid.New(),
		Email:     email,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// Redeemable indica si el token sigue vigente en now.
func (c Confirmation) Redeemable(now time.Time) bool {
	return c.UsedAt == nil && c.ExpiresAt.After(now)
}
