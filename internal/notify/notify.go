// Package notify carries one-shot user notifications (toasts) from
// controllers to whatever renders them.
package notify

import (
	"sync"

	"github.com/rs/zerolog"
)

// Severity selects the visual treatment of a notification.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityDestructive
)

func (s Severity) String() string {
	if s == SeverityDestructive {
		return "destructive"
	}
	return "normal"
}

// Notification is a single user-visible message.
type Notification struct {
	Title    string
	Body     string
	Severity Severity
}

// IsError reports whether the notification uses the destructive treatment.
func (n Notification) IsError() bool {
	return n.Severity == SeverityDestructive
}

// Sink receives notifications. Publish must not block on presentation.
type Sink interface {
	Publish(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Publish(n Notification) { f(n) }

// Queue buffers notifications until the next render drains them.
type Queue struct {
	mu      sync.Mutex
	pending []Notification
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Publish appends n to the queue.
func (q *Queue) Publish(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, n)
}

// Drain returns all queued notifications and empties the queue, so each one
// is shown exactly once.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// LogSink writes notifications to a zerolog logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink that logs every notification.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "notify").Logger()}
}

func (s *LogSink) Publish(n Notification) {
	ev := s.logger.Info()
	if n.IsError() {
		ev = s.logger.Warn()
	}
	ev.Str("title", n.Title).Str("severity", n.Severity.String()).Msg(n.Body)
}

// Fanout publishes to every sink in order.
type Fanout []Sink

func (f Fanout) Publish(n Notification) {
	for _, s := range f {
		if s != nil {
			s.Publish(n)
		}
	}
}
