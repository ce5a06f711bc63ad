package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kathitsondhi/portfolio/internal/gallery"
	"github.com/kathitsondhi/portfolio/internal/notify"
	"github.com/kathitsondhi/portfolio/internal/reveal"
)

func testFactory(id string) *Session {
	obs := reveal.NewObserver(reveal.DefaultConfig(), nil)
	obs.Observe("about", "projects")
	return &Session{
		ID:      id,
		Gallery: gallery.NewController(),
		Reveal:  obs,
		Toasts:  notify.NewQueue(),
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestManager(capacity int, ttl time.Duration) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(capacity, ttl, testFactory, zerolog.Nop())
	m.now = clock.now
	return m, clock
}

func TestAcquire_CreatesAndReuses(t *testing.T) {
	m, _ := newTestManager(10, time.Hour)

	s, created := m.Acquire("")
	require.True(t, created)
	assert.NotEmpty(t, s.ID)

	again, created := m.Acquire(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := m.Acquire("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, m.Len())
}

func TestBlank_IsNotStored(t *testing.T) {
	m, _ := newTestManager(10, time.Hour)
	s := m.Blank()
	require.NotNil(t, s)
	assert.Empty(t, s.ID)
	assert.Equal(t, 0, m.Len())

	_, ok := m.Get("")
	assert.False(t, ok)
}

func TestSessionsAreIsolated(t *testing.T) {
	m, _ := newTestManager(10, time.Hour)
	a, _ := m.Acquire("")
	b, _ := m.Acquire("")

	a.Gallery.Toggle(3)
	assert.True(t, a.Gallery.IsExpanded(3))
	assert.False(t, b.Gallery.IsExpanded(3))
}

func TestGet_Expired(t *testing.T) {
	m, clock := newTestManager(10, time.Hour)
	s, _ := m.Acquire("")

	clock.t = clock.t.Add(2 * time.Hour)
	_, ok := m.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
	assert.False(t, s.Reveal.Report("projects", 1), "expired session is torn down")
}

func TestAcquire_EvictsLeastRecentlyUsed(t *testing.T) {
	m, _ := newTestManager(2, time.Hour)
	first, _ := m.Acquire("")
	second, _ := m.Acquire("")

	m.Get(first.ID)
	third, _ := m.Acquire("")

	_, ok := m.Get(second.ID)
	assert.False(t, ok)
	assert.False(t, second.Reveal.Report("projects", 1), "evicted session is torn down")

	_, ok = m.Get(first.ID)
	assert.True(t, ok)
	_, ok = m.Get(third.ID)
	assert.True(t, ok)
}

func TestSweep(t *testing.T) {
	m, clock := newTestManager(10, time.Hour)
	old, _ := m.Acquire("")
	clock.t = clock.t.Add(45 * time.Minute)
	fresh, _ := m.Acquire("")
	clock.t = clock.t.Add(30 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	_, ok := m.Get(old.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
}

func TestClose_TearsDownAll(t *testing.T) {
	m, _ := newTestManager(10, time.Hour)
	a, _ := m.Acquire("")
	b, _ := m.Acquire("")

	m.Close()
	assert.Equal(t, 0, m.Len())
	assert.False(t, a.Reveal.Report("about", 1))
	assert.False(t, b.Reveal.Report("projects", 1))
}
