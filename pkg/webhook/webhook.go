// Package webhook delivers compliance reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ccollicutt/shiftguard/pkg/output"
)

const (
	// DefaultTimeout bounds a single delivery attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultBackoff is the wait before the first retry. Later retries wait
	// proportionally longer.
	DefaultBackoff = 500 * time.Millisecond

	// RunIDHeader carries the analysis run ID on every delivery.
	RunIDHeader = "X-ShiftGuard-Run-ID"

	// EventAnalysisCompleted is the only event type sent today.
	EventAnalysisCompleted = "analysis.completed"

	maxResponseBody = 1 << 20
)

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event       string         `json:"event"`
	RunID       string         `json:"run_id"`
	HasFindings bool           `json:"has_findings"`
	SentAt      time.Time      `json:"sent_at"`
	Report      *output.Report `json:"report"`
}

// Target is one endpoint to deliver to.
type Target struct {
	URL   string
	Token string // Bearer token (optional)

	// Timeout applies per attempt. Zero selects DefaultTimeout.
	Timeout time.Duration

	// Retries is the number of extra attempts after a network error,
	// a 429, or a 5xx response.
	Retries int
}

// Response is the outcome of the last delivery attempt.
type Response struct {
	StatusCode int
	Body       string
	Attempts   int
	Duration   time.Duration
	Error      error
}

// Success reports whether the endpoint accepted the report with a 2xx status.
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	backoff    time.Duration
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBackoff sets the wait before the first retry.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// NewClient creates a webhook client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		backoff:    DefaultBackoff,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts report to target, retrying transient failures.
func (c *Client) Send(ctx context.Context, report *output.Report, target Target) *Response {
	start := time.Now()
	resp := &Response{}

	body, err := json.Marshal(Payload{
		Event:       EventAnalysisCompleted,
		RunID:       report.Metadata.RunID,
		HasFindings: report.HasIssues(),
		SentAt:      c.now().UTC(),
		Report:      report,
	})
	if err != nil {
		resp.Error = fmt.Errorf("encoding payload: %w", err)
		return resp
	}

	for attempt := 0; attempt <= target.Retries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				resp.Error = err
				break
			}
		}

		resp.Attempts++
		resp.StatusCode, resp.Body, resp.Error = c.post(ctx, body, report.Metadata.RunID, target)
		if !retryable(resp.StatusCode, resp.Error) {
			break
		}
	}

	resp.Duration = time.Since(start)
	return resp
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoff * time.Duration(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// post makes a single attempt.
func (c *Client) post(ctx context.Context, body []byte, runID string, target Target) (int, string, error) {
	timeout := target.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "shiftguard-webhook")
	if runID != "" {
		req.Header.Set(RunIDHeader, runID)
	}
	if target.Token != "" {
		req.Header.Set("Authorization", "Bearer "+target.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("posting report: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return httpResp.StatusCode, "", fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return httpResp.StatusCode, string(data), fmt.Errorf("webhook returned status %d", httpResp.StatusCode)
	}
	return httpResp.StatusCode, string(data), nil
}

// retryable reports whether an attempt failed transiently. Client errors
// other than 429 are final.
func retryable(status int, err error) bool {
	if err == nil {
		return false
	}
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}
