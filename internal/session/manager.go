package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CookieName = "auth"
	contextKey = "session"
	issuer     = "signup-auth"
)

var errInvalidCookie = errors.New("invalid session cookie")

// Options configura la cookie de sesion.
type Options struct {
	Secret string
	TTL    time.Duration
	Domain string
	Secure bool
}

// Manager carga la sesion de cada request desde una cookie firmada (HS256)
// que solo transporta el id; los valores viven en el Store.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	domain string
	secure bool
	logger *zap.Logger
}

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewManager(store Store, opts Options, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		secret: []byte(opts.Secret),
		ttl:    opts.TTL,
		domain: opts.Domain,
		secure: opts.Secure,
		logger: logger,
	}, nil
}

// Middleware adjunta la sesion al contexto de gin. Una cookie ausente,
// invalida o huerfana inicia una sesion vacia.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m.load(c))
		c.Next()
	}
}

func (m *Manager) load(c *gin.Context) *Session {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return newSession(uuid.NewString(), nil)
	}
	sid, err := m.parse(raw)
	if err != nil {
		m.logger.Debug("discarding session cookie", zap.Error(err))
		return newSession(uuid.NewString(), nil)
	}
	values, err := m.store.Load(c.Request.Context(), sid)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("session load failed", zap.Error(err))
		}
		return newSession(uuid.NewString(), nil)
	}
	return newSession(sid, values)
}

// Save persiste la sesion y emite la cookie. Debe llamarse antes de escribir
// el cuerpo de la respuesta.
func (m *Manager) Save(c *gin.Context) error {
	s := FromContext(c)
	if s.Dirty() {
		if err := m.store.Save(c.Request.Context(), s.ID(), s.values, m.ttl); err != nil {
			return err
		}
		s.dirty = false
	}
	token, err := m.sign(s.ID(), time.Now().UTC())
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.ttl.Seconds()), "/", m.domain, m.secure, true)
	return nil
}

// Renew descarta la sesion actual y la reemplaza por una vacia con id nuevo.
// Se llama antes de autenticar para que un id fijado por terceros no
// sobreviva al inicio de sesion.
func (m *Manager) Renew(c *gin.Context) *Session {
	old := FromContext(c)
	if err := m.store.Delete(c.Request.Context(), old.ID()); err != nil && !errors.Is(err, ErrNotFound) {
		m.logger.Warn("session delete failed", zap.Error(err))
	}
	s := newSession(uuid.NewString(), nil)
	c.Set(contextKey, s)
	return s
}

// Destroy elimina la sesion del Store y expira la cookie.
func (m *Manager) Destroy(c *gin.Context) error {
	s := FromContext(c)
	err := m.store.Delete(c.Request.Context(), s.ID())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", m.domain, m.secure, true)
	c.Set(contextKey, newSession(uuid.NewString(), nil))
	return err
}

func (m *Manager) sign(sid string, now time.Time) (string, error) {
	claims := cookieClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(raw string) (string, error) {
	var claims cookieClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errInvalidCookie
	}
	return claims.SessionID, nil
}

// FromContext devuelve la sesion de la request; nunca es nil.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	s := newSession(uuid.NewString(), nil)
	c.Set(contextKey, s)
	return s
}
