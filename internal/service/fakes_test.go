package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"signup-auth/internal/apperr"
	"signup-auth/internal/domain"
	"signup-auth/internal/email"
	"signup-auth/internal/repository"
)

// memDB emula las restricciones de unicidad del esquema real.
type memDB struct {
	mu            sync.Mutex
	confirmations map[uuid.UUID]domain.Confirmation
	users         map[uuid.UUID]domain.User
	createErr     error
}

func newMemDB() *memDB {
	return &memDB{
		confirmations: make(map[uuid.UUID]domain.Confirmation),
		users:         make(map[uuid.UUID]domain.User),
	}
}

type memConfirmationRepo struct{ db *memDB }

func (r memConfirmationRepo) Create(_ context.Context, c domain.Confirmation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.createErr != nil {
		return r.db.createErr
	}
	if _, ok := r.db.confirmations[c.ID]; ok {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "Key (id) already exists."}
	}
	r.db.confirmations[c.ID] = c
	return nil
}

func (r memConfirmationRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Confirmation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.confirmations[id]
	if !ok {
		return domain.Confirmation{}, pgx.ErrNoRows
	}
	return c, nil
}

type memUserRepo struct{ db *memDB }

func (r memUserRepo) GetByEmail(_ context.Context, emailAddr string) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, emailAddr) {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (r memUserRepo) CreateFromConfirmation(_ context.Context, confirmationID uuid.UUID, user domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.confirmations[confirmationID]
	if !ok || !c.Redeemable(user.CreatedAt) {
		return repository.ErrConfirmationConsumed
	}
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "Key (lower(email))=(" + user.Email + ") already exists."}
		}
	}
	usedAt := user.CreatedAt
	c.UsedAt = &usedAt
	r.db.confirmations[confirmationID] = c
	r.db.users[user.ID] = user
	return nil
}

func (db *memDB) userCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users)
}

type fakeHasher struct {
	hashErr error
}

func (h fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h fakeHasher) Verify(hash, password string) (bool, error) {
	if !strings.HasPrefix(hash, "hashed:") {
		return false, apperr.Authentication("Could not verify the password")
	}
	return hash == "hashed:"+password, nil
}

type mockEmailSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *mockEmailSender) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
