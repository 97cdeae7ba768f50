package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionStore keeps admin session tokens
type SessionStore interface {
	Create(ctx context.Context, token string, ttl time.Duration) error
	Valid(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	sessions map[string]time.Time
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]time.Time), now: time.Now}
}

// Create stores a session that expires after ttl
func (s *MemoryStore) Create(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	s.sessions[token] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

// Valid reports whether the token exists and has not expired. Expired tokens are dropped.
func (s *MemoryStore) Valid(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	expiry, exists := s.sessions[token]
	s.mu.RUnlock()

	if !exists {
		return false, nil
	}

	if s.now().After(expiry) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return false, nil
	}

	return true, nil
}

// Delete removes a session
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// RedisStore keeps sessions in Redis so they survive restarts and are
// shared between instances. Expiry is delegated to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store on an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "fitlo:session:"}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

// Create sets the session key with ttl as its expiry
func (s *RedisStore) Create(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(token), "1", ttl).Err()
}

// Valid reports whether the session key still exists
func (s *RedisStore) Valid(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes the session key
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

var (
	_ SessionStore = (*MemoryStore)(nil)
	_ SessionStore = (*RedisStore)(nil)
)
