// Package contact implements the contact form controller: field state, a
// guarded single-shot submission and the resulting notification.
package contact

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kathitsondhi/portfolio/internal/notify"
)

var ErrUnknownField = errors.New("unknown contact field")

// Form field names as they appear in the HTML form.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// Notification texts.
const (
	TitleSuccess   = "Message sent!"
	TitleError     = "Error"
	GenericFailure = "Failed to send message. Please try again."
)

// Outcome classifies a Submit call for metrics.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRejected  Outcome = "rejected"
	OutcomeTransport Outcome = "transport_error"
	OutcomeIgnored   Outcome = "ignored"
)

// Recorder observes submission outcomes.
type Recorder interface {
	RecordSubmission(outcome string)
}

// State is a snapshot of the form.
type State struct {
	Name     string
	Email    string
	Message  string
	InFlight bool
}

// Form holds one visitor's contact form.
type Form struct {
	mu       sync.Mutex
	name     string
	email    string
	message  string
	inFlight bool

	sender   Sender
	sink     notify.Sink
	recorder Recorder
	logger   zerolog.Logger
}

// Option configures a Form.
type Option func(*Form)

// WithRecorder reports submission outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(f *Form) { f.recorder = r }
}

// WithLogger sets the form's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Form) { f.logger = logger.With().Str("component", "contact_form").Logger() }
}

// NewForm creates an empty form that submits through sender and publishes
// notifications to sink.
func NewForm(sender Sender, sink notify.Sink, opts ...Option) *Form {
	f := &Form{
		sender: sender,
		sink:   sink,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// UpdateField overwrites one field verbatim.
func (f *Form) UpdateField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case FieldName:
		f.name = value
	case FieldEmail:
		f.email = value
	case FieldMessage:
		f.message = value
	default:
		return ErrUnknownField
	}
	return nil
}

// State returns a snapshot of the form.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Name:     f.name,
		Email:    f.email,
		Message:  f.message,
		InFlight: f.inFlight,
	}
}

// InFlight reports whether a submission is pending.
func (f *Form) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Submit sends the current fields once. It returns false without sending if
// a submission is already in flight. Failures are reported through the sink
// only. The caller's cancellation does not abort a started request.
func (f *Form) Submit(ctx context.Context) bool {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		f.record(OutcomeIgnored)
		return false
	}
	f.inFlight = true
	payload := Payload{Name: f.name, Email: f.email, Message: f.message}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	reply, err := f.sender.Send(context.WithoutCancel(ctx), payload)
	if err != nil {
		f.fail(err)
		return true
	}

	f.mu.Lock()
	f.name, f.email, f.message = "", "", ""
	f.mu.Unlock()

	f.logger.Info().Str("message_id", reply.ID).Msg("contact message accepted")
	f.record(OutcomeSuccess)
	f.publish(notify.Notification{Title: TitleSuccess, Body: reply.Message})
	return true
}

func (f *Form) fail(err error) {
	body := GenericFailure
	outcome := OutcomeTransport

	var rerr *RemoteError
	if errors.As(err, &rerr) {
		outcome = OutcomeRejected
		if rerr.Detail != "" {
			body = rerr.Detail
		}
	}

	f.logger.Warn().Err(err).Str("outcome", string(outcome)).Msg("contact submission failed")
	f.record(outcome)
	f.publish(notify.Notification{
		Title:    TitleError,
		Body:     body,
		Severity: notify.SeverityDestructive,
	})
}

func (f *Form) publish(n notify.Notification) {
	if f.sink != nil {
		f.sink.Publish(n)
	}
}

func (f *Form) record(o Outcome) {
	if f.recorder != nil {
		f.recorder.RecordSubmission(string(o))
	}
}
