// Package session keeps per-visitor UI state: which project card is
// expanded, the contact form, the scroll-reveal observer and pending toasts.
//
// Sessions are bounded by count (least recently used is evicted) and by
// idle time. A removed session has its observer disconnected.
package session

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/contact"
	"github.com/kathitsondhi/portfolio/internal/gallery"
	"github.com/kathitsondhi/portfolio/internal/notify"
	"github.com/kathitsondhi/portfolio/internal/reveal"
)

// Session is the UI state of one visitor.
type Session struct {
	ID      string
	Gallery *gallery.Controller
	Form    *contact.Form
	Reveal  *reveal.Observer
	Toasts  *notify.Queue
}

func (s *Session) teardown() {
	if s.Reveal != nil {
		s.Reveal.Disconnect()
	}
}

// Factory builds the state for a new session id.
type Factory func(id string) *Session

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager stores sessions by id.
type Manager struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List
	items    map[string]*list.Element
	factory  Factory
	now      func() time.Time
	logger   zerolog.Logger
}

// NewManager creates a manager holding at most capacity sessions, each
// expiring after ttl without use.
func NewManager(capacity int, ttl time.Duration, factory Factory, logger zerolog.Logger) *Manager {
	if capacity < 1 {
		capacity = 1
	}
	return &Manager{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
		factory:  factory,
		now:      time.Now,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// Get returns the live session for id and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id)
}

func (m *Manager) getLocked(id string) (*Session, bool) {
	el, ok := m.items[id]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	now := m.now()
	if m.expired(e, now) {
		m.removeLocked(el)
		return nil, false
	}
	e.lastSeen = now
	m.order.MoveToFront(el)
	return e.session, true
}

// Acquire returns the session for id, creating a new one with a fresh id
// when id is unknown or expired. created reports whether it was new.
func (m *Manager) Acquire(id string) (s *Session, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != "" {
		if s, ok := m.getLocked(id); ok {
			return s, false
		}
	}
	return m.createLocked(), true
}

// Blank builds a session without storing it, for read-only views by
// visitors that have none yet.
func (m *Manager) Blank() *Session {
	return m.factory("")
}

func (m *Manager) createLocked() *Session {
	id := uuid.NewString()
	s := m.factory(id)
	s.ID = id

	if m.order.Len() >= m.capacity {
		if victim := m.order.Back(); victim != nil {
			m.logger.Debug().Str("session_id", victim.Value.(*entry).session.ID).Msg("evicting session")
			m.removeLocked(victim)
		}
	}
	m.items[id] = m.order.PushFront(&entry{session: s, lastSeen: m.now()})
	return s
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.lastSeen) > m.ttl
}

func (m *Manager) removeLocked(el *list.Element) {
	e := m.order.Remove(el).(*entry)
	delete(m.items, e.session.ID)
	e.session.teardown()
}

// Sweep removes expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if m.expired(el.Value.(*entry), now) {
			m.removeLocked(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of stored sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Close tears down every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for el := m.order.Front(); el != nil; {
		next := el.Next()
		m.removeLocked(el)
		el = next
	}
}
