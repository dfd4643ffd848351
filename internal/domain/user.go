package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionUser es la proyeccion publica de User que se guarda en la sesion.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u User) SessionUser() SessionUser {
	return SessionUser{ID: u.ID.String(), Email: u.Email}
}
