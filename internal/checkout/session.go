package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when no session exists for an id.
var ErrSessionNotFound = errors.New("checkout: session not found")

// Session is the per-visitor state of one booking form that must survive
// between requests: the applied promo and its discount. BookingID is set once
// the form's booking has been confirmed.
type Session struct {
	ID           string `json:"id"`
	ExperienceID string `json:"experience_id"`
	PromoCode    string `json:"promo_code,omitempty"`
	Discount     int    `json:"discount"`
	BookingID    string `json:"booking_id,omitempty"`
}

// SessionStore persists checkout sessions and guards in-flight submissions.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	// TryLock marks a submission in flight. It returns false when one already is.
	TryLock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, id string) error
	InFlight(ctx context.Context, id string) (bool, error)
}

// RedisStore keeps sessions in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("checkout: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("checkout: load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("checkout: decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("checkout: encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("checkout: save session: %w", err)
	}
	return nil
}

func (s *RedisStore) TryLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKey(id), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("checkout: lock session: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Unlock(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, lockKey(id)).Err(); err != nil {
		return fmt.Errorf("checkout: unlock session: %w", err)
	}
	return nil
}

func (s *RedisStore) InFlight(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, lockKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("checkout: check lock: %w", err)
	}
	return n > 0, nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("checkout:session:%s", id)
}

func lockKey(id string) string {
	return fmt.Sprintf("checkout:inflight:%s", id)
}

// MemoryStore is an in-process SessionStore for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	locks    map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok || m.now().After(entry.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess := entry.session
	return &sess, nil
}

func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = memoryEntry{session: *sess, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) TryLock(_ context.Context, id string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if until, ok := m.locks[id]; ok && m.now().Before(until) {
		return false, nil
	}
	m.locks[id] = m.now().Add(ttl)
	return true, nil
}

func (m *MemoryStore) Unlock(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, id)
	return nil
}

func (m *MemoryStore) InFlight(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.locks[id]
	return ok && m.now().Before(until), nil
}
