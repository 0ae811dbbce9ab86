package calculator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Session is a point-in-time copy of one calculator session.
type Session struct {
	ID        string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store keeps one calculator State per session in memory. It is safe for
// concurrent use; presses on a session are applied one batch at a time.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) StoreOption {
	return func(s *Store) { s.maxSessions = n }
}

// WithIdleTTL sets how long a session may go untouched before Sweep evicts
// it. Zero disables eviction.
func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return Session{}, fmt.Errorf("%w: limit %d", ErrTooManySessions, s.maxSessions)
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		State:     NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess

	return sess.snapshot(), nil
}

func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.snapshot(), nil
}

// PressResult is the session after a batch of presses.
type PressResult struct {
	Session

	Applied      int // keys applied before any unknown key
	Calculations int // "=" presses that completed a calculation
}

// Press applies keys to the session's state. If a key is unknown the state
// reached before it is kept and the error is returned alongside it.
func (s *Store) Press(id string, keys ...Key) (PressResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return PressResult{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	var (
		res PressResult
		err error
	)
	state := sess.State
	for _, k := range keys {
		var next State
		if next, err = Press(state, k); err != nil {
			break
		}
		if len(next.History) > len(state.History) {
			res.Calculations++
		}
		state = next
		res.Applied++
	}

	sess.State = state
	sess.UpdatedAt = s.now()
	res.Session = sess.snapshot()

	return res, err
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the configured TTL and reports
// how many were removed.
func (s *Store) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run calls Sweep every interval until ctx is done. onSweep, when non-nil,
// receives the number of sessions evicted by each pass.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(int)) {
	if interval <= 0 || s.idleTTL <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (sess *Session) snapshot() Session {
	out := *sess
	out.State = sess.State.Snapshot()
	return out
}
