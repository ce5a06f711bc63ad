package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Payload is the body sent to the contact backend.
type Payload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Reply is the backend's acknowledgement of an accepted message.
type Reply struct {
	Message string
	ID      string
}

// RemoteError is returned when the backend answered but did not accept the
// message.
type RemoteError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("contact backend rejected message (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("contact backend rejected message (status %d)", e.StatusCode)
}

// Sender delivers a payload to the contact backend. It makes exactly one
// attempt.
type Sender interface {
	Send(ctx context.Context, p Payload) (Reply, error)
}

// maxReplyBytes bounds how much of a backend reply is read.
const maxReplyBytes = 1 << 20

// HTTPSender posts payloads as JSON to a fixed endpoint.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSender creates a sender for endpoint with the given transport timeout.
func NewHTTPSender(endpoint string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL payloads are posted to.
func (s *HTTPSender) Endpoint() string {
	return s.endpoint
}

func (s *HTTPSender) Send(ctx context.Context, p Payload) (Reply, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to encode contact payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to build contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("contact request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to read contact reply: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if ok && gjson.GetBytes(data, "success").Type == gjson.True {
		return Reply{
			Message: gjson.GetBytes(data, "message").String(),
			ID:      gjson.GetBytes(data, "id").String(),
		}, nil
	}

	rerr := &RemoteError{StatusCode: resp.StatusCode}
	if detail := gjson.GetBytes(data, "detail"); detail.Type == gjson.String {
		rerr.Detail = detail.String()
	}
	return Reply{}, rerr
}
