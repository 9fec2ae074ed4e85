// Package registry binds conversation identifiers to their state across
// turns, enforces one in-flight turn per conversation, and expires idle
// conversations.
package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmeurer/caseflow/internal/conversation"
)

var ErrNotFound = errors.New("conversation not found")

// Session binds one conversation id to its state. turnMu serializes turns:
// a second turn for the same id waits for the first to commit, so the
// summarize context always sees the prior turn's appended messages.
type Session struct {
	ID             string
	State          *conversation.State
	CreatedAt      time.Time
	LastActivityAt time.Time

	turnMu sync.Mutex
}

// TurnRunner executes one turn against a conversation's state.
type TurnRunner interface {
	RunTurn(ctx context.Context, state *conversation.State, message string) conversation.TurnResult
}

// Registry is the only structure shared across concurrent callers; the map
// is guarded here, while each session's state is owned by its in-flight turn.
type Registry struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewRegistry(inactivityTimeout time.Duration) *Registry {
	if inactivityTimeout <= 0 {
		inactivityTimeout = time.Hour
	}
	return &Registry{
		sessions:          make(map[string]*Session),
		inactivityTimeout: inactivityTimeout,
	}
}

func (r *Registry) SetExpireHook(hook func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = hook
}

// GetOrCreate returns the session for id, creating it on first use. An empty
// id gets a generated one. created reports whether this call made the session.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		return existing, false
	}

	now := time.Now().UTC()
	s = &Session{
		ID:             id,
		State:          conversation.NewState(),
		CreatedAt:      now,
		LastActivityAt: now,
	}
	r.sessions[id] = s
	return s, true
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RunTurn executes one turn for id under the session's turn mutex. Turns for
// distinct ids run fully in parallel; turns for the same id queue.
func (r *Registry) RunTurn(ctx context.Context, id string, runner TurnRunner, message string) (conversation.TurnResult, error) {
	s, err := r.Get(id)
	if err != nil {
		return conversation.TurnResult{}, err
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	result := runner.RunTurn(ctx, s.State, message)
	r.touch(id)
	return result, nil
}

// Snapshot returns a point-in-time view of a session for status reporting.
type Snapshot struct {
	ID             string              `json:"conversation_id"`
	Status         conversation.Status `json:"status"`
	MessageCount   int                 `json:"message_count"`
	CreatedAt      time.Time           `json:"created_at"`
	LastActivityAt time.Time           `json:"last_activity_at"`
}

func (r *Registry) SnapshotOf(id string) (Snapshot, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.RUnlock()
		return Snapshot{}, ErrNotFound
	}
	snap := Snapshot{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
	}
	r.mu.RUnlock()

	// State is owned by the in-flight turn; reading it has to wait for the
	// turn to commit. Taken after releasing r.mu so touch cannot deadlock us.
	s.turnMu.Lock()
	snap.Status = s.State.Status
	snap.MessageCount = len(s.State.History)
	s.turnMu.Unlock()

	return snap, nil
}

func (r *Registry) touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.LastActivityAt = time.Now().UTC()
	}
}

// StartJanitor sweeps expired sessions until ctx is done. Sweeping is
// advisory housekeeping: a swept conversation simply starts fresh on next use.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.SweepExpired(time.Now().UTC(), r.inactivityTimeout)
			}
		}
	}()
}

// SweepExpired removes sessions idle longer than maxAge and reports how many
// were removed.
func (r *Registry) SweepExpired(now time.Time, maxAge time.Duration) int {
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.LastActivityAt) < maxAge {
			continue
		}
		expired = append(expired, s)
		delete(r.sessions, id)
	}
	hook := r.onExpire
	r.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
	return len(expired)
}
