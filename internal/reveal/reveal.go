// Package reveal tracks which page sections have scrolled into view.
//
// Each observed section flips from hidden to revealed the first time its
// reported visible fraction reaches the threshold, and never flips back.
// The browser watches sections with an IntersectionObserver and posts each
// crossing back with htmx.ajax; Config carries the options rendered into
// the page for that observer.
package reveal

import "sync"

// Config holds the visibility options.
type Config struct {
	Threshold  float64
	RootMargin string
}

// DefaultConfig returns a 10% threshold with the bottom of the viewport
// pulled in by 100px.
func DefaultConfig() Config {
	return Config{
		Threshold:  0.1,
		RootMargin: "0px 0px -100px 0px",
	}
}

// Callback is invoked once per section when it is revealed.
type Callback func(section string)

// Observer holds the reveal state for one visitor.
type Observer struct {
	mu           sync.Mutex
	cfg          Config
	observed     map[string]bool
	onReveal     Callback
	disconnected bool
}

// NewObserver creates an observer. onReveal may be nil.
func NewObserver(cfg Config, onReveal Callback) *Observer {
	return &Observer{
		cfg:      cfg,
		observed: make(map[string]bool),
		onReveal: onReveal,
	}
}

// Config returns the observer's options.
func (o *Observer) Config() Config {
	return o.cfg
}

// Observe starts watching the given sections. Sections already observed
// keep their state.
func (o *Observer) Observe(sections ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disconnected {
		return
	}
	for _, s := range sections {
		if _, ok := o.observed[s]; !ok {
			o.observed[s] = false
		}
	}
}

// Report records that section is visible by fraction. It returns true only
// for the report that revealed the section.
func (o *Observer) Report(section string, fraction float64) bool {
	o.mu.Lock()
	if o.disconnected {
		o.mu.Unlock()
		return false
	}
	revealed, ok := o.observed[section]
	if !ok || revealed || fraction < o.cfg.Threshold {
		o.mu.Unlock()
		return false
	}
	o.observed[section] = true
	cb := o.onReveal
	o.mu.Unlock()

	if cb != nil {
		cb(section)
	}
	return true
}

// RevealedSet returns the revealed sections.
func (o *Observer) RevealedSet() map[string]bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]bool, len(o.observed))
	for s, r := range o.observed {
		if r {
			out[s] = true
		}
	}
	return out
}

// Disconnect releases every observation. Later reports are ignored and the
// callback is dropped.
func (o *Observer) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disconnected = true
	o.onReveal = nil
	for s, r := range o.observed {
		if !r {
			delete(o.observed, s)
		}
	}
}
