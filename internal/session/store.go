package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound se devuelve cuando no existe un registro para el id.
var ErrNotFound = errors.New("session not found")

// Store guarda los valores de cada sesion del lado del servidor.
type Store interface {
	Load(ctx context.Context, id string) (map[string]string, error)
	Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	values  map[string]string
	expires time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

// NewMemoryStore crea un Store en memoria, util sin Redis y en tests.
func NewMemoryStore() Store {
	return &memoryStore{items: make(map[string]memoryEntry)}
}

func (s *memoryStore) Load(_ context.Context, id string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().UTC().After(entry.expires) {
		delete(s.items, id)
		return nil, ErrNotFound
	}
	return copyValues(entry.values), nil
}

func (s *memoryStore) Save(_ context.Context, id string, values map[string]string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(id) == "" {
		return errors.New("session id is required")
	}
	s.items[id] = memoryEntry{values: copyValues(values), expires: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisStore struct {
	client  redisKV
	prefix  string
	timeout time.Duration
}

// NewRedisStore guarda cada sesion como JSON bajo "session:<id>" con TTL.
func NewRedisStore(client *redis.Client) Store {
	if client == nil {
		return nil
	}
	return newRedisStore(client)
}

func newRedisStore(client redisKV) *redisStore {
	return &redisStore{
		client:  client,
		prefix:  "session:",
		timeout: 500 * time.Millisecond,
	}
}

func (s *redisStore) Load(ctx context.Context, id string) (map[string]string, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *redisStore) Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("session id is required")
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+id, string(raw), ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+id).Err()
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
