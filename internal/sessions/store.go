package sessions

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mepex/cotizador-backend/internal/quote"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
)

// Stored is the persisted form of a session.
type Stored struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	State     quote.Snapshot `json:"state"`
}

// Store persists session snapshots between process restarts. Load reports
// false for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (Stored, bool, error)
	Save(ctx context.Context, s Stored, ttl time.Duration) error
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// KV is the key-value client the Redis store needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Touch(ctx context.Context, key string, ttl time.Duration) error
	SessionKey(id string) string
}

type RedisStore struct {
	kv     KV
	isMiss func(error) bool
}

// NewRedisStore builds a store on kv; isMiss recognizes a missing key.
func NewRedisStore(kv KV, isMiss func(error) bool) *RedisStore {
	return &RedisStore{kv: kv, isMiss: isMiss}
}

func (r *RedisStore) Load(ctx context.Context, id string) (Stored, bool, error) {
	raw, err := r.kv.Get(ctx, r.kv.SessionKey(id))
	if err != nil {
		if r.isMiss != nil && r.isMiss(err) {
			return Stored{}, false, nil
		}
		return Stored{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	var s Stored
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Stored{}, false, nil
	}
	return s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, s Stored, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session")
	}
	if err := r.kv.Set(ctx, r.kv.SessionKey(s.ID), string(raw), ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session")
	}
	return nil
}

func (r *RedisStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	if err := r.kv.Touch(ctx, r.kv.SessionKey(id), ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch session")
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.kv.Del(ctx, r.kv.SessionKey(id)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
	}
	return nil
}

// MemoryStore keeps snapshots in process; expired entries are dropped on
// read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (Stored, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return Stored{}, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, id)
		return Stored{}, false, nil
	}
	var s Stored
	if err := json.Unmarshal(e.raw, &s); err != nil {
		return Stored{}, false, nil
	}
	return s, true, nil
}

func (m *MemoryStore) Save(_ context.Context, s Stored, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session")
	}
	e := memoryEntry{raw: raw}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[s.ID] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || ttl <= 0 {
		return nil
	}
	e.expiresAt = m.now().Add(ttl)
	m.entries[id] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}
