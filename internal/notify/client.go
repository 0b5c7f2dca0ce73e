package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
)

// DefaultTimeout bounds a single webhook call.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 512

// Client posts pipeline notifications to a chat webhook.
type Client struct {
	webhookURL string
	serverURL  string
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithServerURL sets the base URL used for repository links.
func WithServerURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.serverURL = u
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a notification client. Returns nil if webhookURL is empty;
// sending through a nil client is a successful no-op.
func New(webhookURL string, opts ...Option) *Client {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return nil
	}
	c := &Client{
		webhookURL: webhookURL,
		serverURL:  defaultServerURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client will actually send.
func (c *Client) Enabled() bool {
	return c != nil
}

// Send builds the message for req and posts it once. Only HTTP 200 counts
// as success; failures come back as *NotificationError and are not retried.
func (c *Client) Send(ctx context.Context, req models.NotificationRequest) error {
	if c == nil {
		return nil
	}
	if err := req.Counts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	links := BuildLinks(c.serverURL, req.Repository, req.CommitSHA, req.RunID)
	body, err := json.Marshal(BuildMessage(req, links, c.now()))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return &NotificationError{Cause: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &NotificationError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = resp.Status
		}
		return &NotificationError{HTTPStatus: resp.StatusCode, Cause: errors.New(msg)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
