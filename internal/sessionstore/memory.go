// Package sessionstore keeps in-progress questionnaire sessions keyed by id.
// Each id maps to exactly one session; sessions never share state.
package sessionstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/godilite/support-recommender/internal/session"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

type memoryEntry struct {
	state   session.State
	expires time.Time
}

// Memory is a process-local store. A zero ttl keeps sessions until deleted.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Load(ctx context.Context, id string) (session.State, error) {
	if err := ctx.Err(); err != nil {
		return session.State{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return session.State{}, ErrNotFound
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, id)
		return session.State{}, ErrNotFound
	}
	return e.state.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, id string, st session.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{state: st.Clone()}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[id] = e
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}
