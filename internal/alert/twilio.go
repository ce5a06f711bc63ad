package alert

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/kathitsondhi/portfolio/internal/store"
)

// TwilioConfig holds the Twilio account and numbers.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioNotifier texts the owner a short summary of the message.
type TwilioNotifier struct {
	api  messageCreator
	from string
	to   string
}

// NewTwilioNotifier creates an SMS notifier.
func NewTwilioNotifier(cfg TwilioConfig) (*TwilioNotifier, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("from and to numbers must be provided")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioNotifier{api: client.Api, from: cfg.From, to: cfg.To}, nil
}

func (n *TwilioNotifier) Name() string { return "sms" }

// smsPreviewLen is how many characters of the message the SMS carries.
const smsPreviewLen = 120

func smsBody(m store.ContactMessage) string {
	preview := []rune(m.Message)
	if len(preview) > smsPreviewLen {
		preview = append(preview[:smsPreviewLen], '…')
	}
	return fmt.Sprintf("New portfolio message from %s <%s>: %s", m.Name, m.Email, string(preview))
}

func (n *TwilioNotifier) Notify(ctx context.Context, m store.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(smsBody(m))

	if _, err := n.api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", n.to, err)
	}
	return nil
}
