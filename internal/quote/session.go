package quote

import "time"

// Session owns one quotation state and the breakdown of its latest change.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	state     *State
	engine    *Engine
	breakdown Breakdown
	revision  int
}

func NewSession(id string, lookup Lookup) *Session {
	now := time.Now().UTC()
	s := &Session{ID: id, CreatedAt: now, UpdatedAt: now, engine: NewEngine(lookup)}
	s.state = NewState(lookup)
	s.state.OnChange(s.recompute)
	s.breakdown = s.engine.Compute(s.state)
	return s
}

func (s *Session) recompute() {
	s.breakdown = s.engine.Compute(s.state)
	s.revision++
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) State() *State {
	return s.state
}

// Breakdown is the result of the last recomputation.
func (s *Session) Breakdown() Breakdown {
	return s.breakdown
}

// Refresh reprices against the current catalog without mutating the state.
func (s *Session) Refresh() Breakdown {
	s.breakdown = s.engine.Compute(s.state)
	return s.breakdown
}

// Revision counts state changes since the session was built.
func (s *Session) Revision() int {
	return s.revision
}

// Mark captures everything a failed operation needs to undo.
type Mark struct {
	snapshot  Snapshot
	breakdown Breakdown
	revision  int
	updatedAt time.Time
}

func (s *Session) Mark() Mark {
	return Mark{
		snapshot:  s.state.Snapshot(),
		breakdown: s.breakdown,
		revision:  s.revision,
		updatedAt: s.UpdatedAt,
	}
}

// Rollback returns the session to m as if the changes since never happened.
func (s *Session) Rollback(m Mark) {
	s.state.Load(m.snapshot)
	s.breakdown = m.breakdown
	s.revision = m.revision
	s.UpdatedAt = m.updatedAt
}
