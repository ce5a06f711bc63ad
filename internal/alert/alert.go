// Package alert tells the site owner about new contact messages by email
// and SMS. Delivery failures are logged and never reach the visitor.
package alert

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/store"
)

// Notifier delivers one alert for a stored contact message.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, m store.ContactMessage) error
}

// Recorder observes alert deliveries.
type Recorder interface {
	RecordAlert(channel string, err error)
}

// deliveryTimeout bounds a single background fan-out.
const deliveryTimeout = 30 * time.Second

// Dispatcher fans an alert out to every configured notifier.
type Dispatcher struct {
	notifiers []Notifier
	recorder  Recorder
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Nil notifiers are skipped.
func NewDispatcher(logger zerolog.Logger, recorder Recorder, notifiers ...Notifier) *Dispatcher {
	d := &Dispatcher{
		recorder: recorder,
		logger:   logger.With().Str("component", "alert").Logger(),
	}
	for _, n := range notifiers {
		if n != nil {
			d.notifiers = append(d.notifiers, n)
		}
	}
	return d
}

// Enabled reports whether any notifier is configured.
func (d *Dispatcher) Enabled() bool {
	return len(d.notifiers) > 0
}

// Channels returns the names of the configured notifiers.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}

// Notify delivers m through every notifier and returns the number that
// failed.
func (d *Dispatcher) Notify(ctx context.Context, m store.ContactMessage) int {
	failed := 0
	for _, n := range d.notifiers {
		err := n.Notify(ctx, m)
		if d.recorder != nil {
			d.recorder.RecordAlert(n.Name(), err)
		}
		if err != nil {
			failed++
			d.logger.Error().Err(err).Str("channel", n.Name()).Str("message_id", m.ID).Msg("alert delivery failed")
			continue
		}
		d.logger.Info().Str("channel", n.Name()).Str("message_id", m.ID).Msg("alert delivered")
	}
	return failed
}

// Go delivers m in the background.
func (d *Dispatcher) Go(m store.ContactMessage) {
	if !d.Enabled() {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		d.Notify(ctx, m)
	}()
}

// Wait blocks until background deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// WaitContext is Wait bounded by ctx. It reports whether every delivery
// finished.
func (d *Dispatcher) WaitContext(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
