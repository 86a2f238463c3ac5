package sessions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mepex/cotizador-backend/internal/quote"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
)

const defaultTTL = 24 * time.Hour

// View is what callers see of a session after an operation.
type View struct {
	ID        string          `json:"id"`
	Revision  int             `json:"revision"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	State     quote.Snapshot  `json:"state"`
	Breakdown quote.Breakdown `json:"breakdown"`
}

type ManagerParams struct {
	Lookup quote.Lookup
	Store  Store
	TTL    time.Duration
	Logger *logger.Logger
}

// Manager owns the live quotation sessions. Each session has its own mutex;
// operations on one session never run concurrently.
type Manager struct {
	lookup quote.Lookup
	store  Store
	ttl    time.Duration
	logg   *logger.Logger
	now    func() time.Time

	mu   sync.Mutex
	live map[string]*entry
}

type entry struct {
	mu        sync.Mutex
	sess      *quote.Session
	lastSeen  time.Time
	touchedAt time.Time
}

func NewManager(p ManagerParams) *Manager {
	store := p.Store
	if store == nil {
		store = NewMemoryStore()
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		lookup: p.Lookup,
		store:  store,
		ttl:    ttl,
		logg:   p.Logger,
		now:    time.Now,
		live:   map[string]*entry{},
	}
}

// Create starts an empty session.
func (m *Manager) Create(ctx context.Context) (View, error) {
	sess := quote.NewSession(uuid.NewString(), m.lookup)
	now := m.now()
	e := &entry{sess: sess, lastSeen: now, touchedAt: now}
	if err := m.persist(ctx, sess); err != nil {
		return View{}, err
	}
	m.mu.Lock()
	m.live[sess.ID] = e
	m.mu.Unlock()
	return viewOf(sess), nil
}

// Get returns the current view of a session.
func (m *Manager) Get(ctx context.Context, id string) (View, error) {
	return m.Mutate(ctx, id, nil)
}

// Mutate runs fn with exclusive access to the session and persists the
// result when the state changed. A nil fn only reads. When fn or the save
// fails the session is rolled back to its state before the call.
func (m *Manager) Mutate(ctx context.Context, id string, fn func(*quote.Session) error) (View, error) {
	e, err := m.acquire(ctx, id)
	if err != nil {
		return View{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.sess.Revision()
	var mark quote.Mark
	if fn != nil {
		mark = e.sess.Mark()
		if err := fn(e.sess); err != nil {
			if e.sess.Revision() != before {
				e.sess.Rollback(mark)
			}
			return View{}, err
		}
	}
	e.lastSeen = m.now()
	switch {
	case e.sess.Revision() != before:
		// the live copy never runs ahead of the stored one
		if err := m.persist(ctx, e.sess); err != nil {
			e.sess.Rollback(mark)
			return View{}, err
		}
		e.touchedAt = e.lastSeen
	case e.lastSeen.Sub(e.touchedAt) > m.ttl/4:
		// reads keep the stored copy alive; a failed refresh only shortens its life
		if err := m.store.Touch(ctx, e.sess.ID, m.ttl); err != nil {
			m.logg.Warn(m.logg.WithSessionID(ctx, e.sess.ID), "session ttl refresh failed")
		} else {
			e.touchedAt = e.lastSeen
		}
	}
	return viewOf(e.sess), nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	m.mu.Lock()
	_, live := m.live[id]
	delete(m.live, id)
	m.mu.Unlock()

	_, stored, err := m.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if !live && !stored {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "session %s not found", id)
	}
	return m.store.Delete(ctx, id)
}

// acquire finds a live session or revives a stored one. Idle live sessions
// past the TTL are dropped first.
func (m *Manager) acquire(ctx context.Context, id string) (*entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	now := m.now()

	m.mu.Lock()
	for key, e := range m.live {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.live, key)
		}
	}
	if e, ok := m.live[id]; ok {
		m.mu.Unlock()
		return e, nil
	}
	m.mu.Unlock()

	stored, ok, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "session %s not found", id)
	}
	sess := quote.NewSession(stored.ID, m.lookup)
	sess.State().Load(stored.State)
	sess.CreatedAt = stored.CreatedAt
	sess.UpdatedAt = stored.UpdatedAt

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.live[id]; ok {
		return e, nil
	}
	e := &entry{sess: sess, lastSeen: now, touchedAt: now}
	m.live[id] = e
	m.logg.Debug(m.logg.WithSessionID(ctx, id), "session revived from store")
	return e, nil
}

func (m *Manager) persist(ctx context.Context, sess *quote.Session) error {
	return m.store.Save(ctx, Stored{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		State:     sess.State().Snapshot(),
	}, m.ttl)
}

func viewOf(sess *quote.Session) View {
	return View{
		ID:        sess.ID,
		Revision:  sess.Revision(),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		State:     sess.State().Snapshot(),
		Breakdown: sess.Breakdown(),
	}
}
