package session

import (
	"encoding/json"
	"strings"

	"signup-auth/internal/apperr"
	"signup-auth/internal/domain"
)

const userKey = "user"

// SetCurrentUser guarda la proyeccion publica del usuario en la sesion.
func SetCurrentUser(s *Session, user domain.SessionUser) {
	raw, err := json.Marshal(user)
	if err != nil {
		panic("session: encode session user: " + err.Error())
	}
	s.Set(userKey, string(raw))
}

// GetCurrentUser recupera el usuario autenticado de la sesion.
func GetCurrentUser(s *Session) (domain.SessionUser, error) {
	errNoUser := apperr.Authentication("Could not retrieve user from session")
	if s == nil {
		return domain.SessionUser{}, errNoUser
	}
	raw, ok := s.Get(userKey)
	if !ok {
		return domain.SessionUser{}, errNoUser
	}
	var user domain.SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return domain.SessionUser{}, apperr.Wrap(errNoUser, err)
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return domain.SessionUser{}, errNoUser
	}
	return user, nil
}

func IsSignedIn(s *Session) bool {
	_, err := GetCurrentUser(s)
	return err == nil
}
