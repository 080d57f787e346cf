package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/drishiq/concierge/internal/tokens"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultInputBudget = 8000 // tokens
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithInputBudget caps the prompt size in tokens; zero disables the check.
func WithInputBudget(budget int) ClientOption {
	return func(c *Client) {
		c.inputBudget = budget
	}
}

// Client speaks the responses-API shape of the text-generation collaborator:
// POST {base}/responses with {model, input, temperature, max_tokens},
// normalized {content} back. Prompts over the input budget are rejected
// before the wire call.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	counter     *tokens.Counter
	inputBudget int
}

var _ Generator = (*Client)(nil)

// NewClient creates a generation client.
func NewClient(apiKey, baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  http.DefaultClient,
		timeout:     defaultTimeout,
		counter:     tokens.NewCounter(),
		inputBudget: defaultInputBudget,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wireResponse struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Generate sends req and returns the normalized text content. The call is
// bounded by the client timeout; context cancellation aborts it.
func (c *Client) Generate(ctx context.Context, req *Request) (string, error) {
	if c.inputBudget > 0 {
		if count := c.counter.Count(req.Model, req.Input); count > c.inputBudget {
			return "", fmt.Errorf("input of %d tokens exceeds budget of %d", count, c.inputBudget)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation error (status %d): %s", resp.StatusCode, truncate(respBody, 500))
	}

	var result wireResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("generation error: %s", result.Error)
	}
	return strings.TrimSpace(result.Content), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
