package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"mavenestudio/services/leadform"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	// ErrWizardNotFound is returned for unknown or expired wizard sessions
	ErrWizardNotFound = errors.New("wizard session not found")
	// ErrWizardBusy is returned when another request holds the session
	ErrWizardBusy = errors.New("wizard session is busy")
)

// WizardStore keeps contact wizard sessions between requests. Sessions are
// stored by value: callers get a private copy and must Save it back.
type WizardStore interface {
	Get(ctx context.Context, id string) (*leadform.Session, error)
	Save(ctx context.Context, s *leadform.Session) error
	Delete(ctx context.Context, id string) error
	// Acquire takes the session's request lock so only one mutating request
	// (and therefore one submission) runs at a time.
	Acquire(ctx context.Context, id string) (release func(), err error)
}

// WizardLockTTL is how long a session lock may outlive a crashed holder. It
// covers the captcha check, the lead dispatch and the database write that run
// while a submission holds the lock.
func WizardLockTTL(leadTimeout time.Duration) time.Duration {
	return TurnstileTimeout + leadTimeout + 10*time.Second
}

// NewWizardStore returns a Redis-backed store when client is non-nil,
// otherwise an in-memory store.
func NewWizardStore(client *redis.Client, ttl, lockTTL time.Duration) WizardStore {
	if client != nil {
		log.Info().Dur("ttl", ttl).Msg("Wizard sessions stored in Redis")
		return NewRedisWizardStore(client, ttl, lockTTL)
	}
	log.Info().Dur("ttl", ttl).Msg("Wizard sessions stored in memory")
	return NewMemoryWizardStore(ttl)
}

type memoryWizardEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryWizardStore keeps sessions in process memory
type MemoryWizardStore struct {
	ttl   time.Duration
	mu    sync.Mutex
	store map[string]memoryWizardEntry
	locks map[string]struct{}
	now   func() time.Time
}

func NewMemoryWizardStore(ttl time.Duration) *MemoryWizardStore {
	return &MemoryWizardStore{
		ttl:   ttl,
		store: make(map[string]memoryWizardEntry),
		locks: make(map[string]struct{}),
		now:   time.Now,
	}
}

func (m *MemoryWizardStore) Get(ctx context.Context, id string) (*leadform.Session, error) {
	m.mu.Lock()
	entry, ok := m.store[id]
	if ok && m.now().After(entry.expiresAt) {
		delete(m.store, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrWizardNotFound
	}
	return decodeWizard(entry.data)
}

func (m *MemoryWizardStore) Save(ctx context.Context, s *leadform.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}

	m.mu.Lock()
	m.store[s.ID] = memoryWizardEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryWizardStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.store, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryWizardStore) Acquire(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[id]; held {
		return nil, ErrWizardBusy
	}
	m.locks[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.locks, id)
			m.mu.Unlock()
		})
	}, nil
}

// Cleanup drops expired sessions and returns how many were removed
func (m *MemoryWizardStore) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryWizardStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

const (
	wizardKeyPrefix     = "wizard:session:"
	wizardLockKeyPrefix = "wizard:lock:"
)

// RedisWizardStore keeps sessions in Redis with a sliding TTL
type RedisWizardStore struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewRedisWizardStore(client *redis.Client, ttl, lockTTL time.Duration) *RedisWizardStore {
	return &RedisWizardStore{client: client, ttl: ttl, lockTTL: lockTTL}
}

func (r *RedisWizardStore) Get(ctx context.Context, id string) (*leadform.Session, error) {
	data, err := r.client.Get(ctx, wizardKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}
	return decodeWizard(data)
}

func (r *RedisWizardStore) Save(ctx context.Context, s *leadform.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}
	if err := r.client.Set(ctx, wizardKeyPrefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}

func (r *RedisWizardStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, wizardKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}
	return nil
}

// releaseWizardLock deletes the lock only while it still holds the caller's
// token, so a holder whose lock expired cannot free a newer holder's lock.
var releaseWizardLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *RedisWizardStore) Acquire(ctx context.Context, id string) (func(), error) {
	key := wizardLockKeyPrefix + id
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to lock wizard session: %w", err)
	}
	if !ok {
		return nil, ErrWizardBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			n, err := releaseWizardLock.Run(context.WithoutCancel(ctx), r.client, []string{key}, token).Int()
			if err != nil {
				log.Warn().Err(err).Str("session_id", id).Msg("Failed to release wizard lock")
				return
			}
			if n == 0 {
				log.Warn().Str("session_id", id).Dur("lock_ttl", r.lockTTL).Msg("Wizard lock expired before release")
			}
		})
	}, nil
}

func decodeWizard(data []byte) (*leadform.Session, error) {
	var s leadform.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode wizard session: %w", err)
	}
	if s.Errors == nil {
		s.Errors = make(map[leadform.Field]string)
	}
	return &s, nil
}
