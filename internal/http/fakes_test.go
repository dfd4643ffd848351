package http

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"signup-auth/internal/domain"
	"signup-auth/internal/email"
	"signup-auth/internal/repository"
)

type memDB struct {
	mu            sync.Mutex
	confirmations map[uuid.UUID]domain.Confirmation
	users         map[uuid.UUID]domain.User
}

func newMemDB() *memDB {
	return &memDB{
		confirmations: make(map[uuid.UUID]domain.Confirmation),
		users:         make(map[uuid.UUID]domain.User),
	}
}

type mockConfirmationRepo struct{ db *memDB }

func (r mockConfirmationRepo) Create(_ context.Context, c domain.Confirmation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.confirmations[c.ID] = c
	return nil
}

func (r mockConfirmationRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Confirmation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.confirmations[id]
	if !ok {
		return domain.Confirmation{}, pgx.ErrNoRows
	}
	return c, nil
}

type mockUserRepo struct{ db *memDB }

func (r mockUserRepo) GetByEmail(_ context.Context, emailAddr string) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, emailAddr) {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (r mockUserRepo) CreateFromConfirmation(_ context.Context, confirmationID uuid.UUID, user domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.confirmations[confirmationID]
	if !ok || !c.Redeemable(user.CreatedAt) {
		return repository.ErrConfirmationConsumed
	}
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "email already exists"}
		}
	}
	usedAt := user.CreatedAt
	c.UsedAt = &usedAt
	r.db.confirmations[confirmationID] = c
	r.db.users[user.ID] = user
	return nil
}

func (db *memDB) onlyConfirmation() (domain.Confirmation, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, c := range db.confirmations {
		return c, true
	}
	return domain.Confirmation{}, false
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

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

var errDBDown = errors.New("db down")
