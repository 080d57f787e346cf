// Package astro is the client for the deterministic signal-compute
// collaborator. One call per pipeline run, bounded timeout, no retries; any
// failure is reported as an error for the pipeline to route to its fallback.
package astro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/drishiq/concierge/internal/domain"
)

const defaultTimeout = 10 * time.Second

// ComputeInput is the request body for POST /astro/compute.
type ComputeInput struct {
	DOBDate        string  `json:"dob_date"`
	DOBTime        string  `json:"dob_time"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Timezone       string  `json:"timezone"`
	ProblemContext string  `json:"problem_context"`
	UDASummary     string  `json:"uda_summary"`
}

type computeResponse struct {
	Success bool                `json:"success"`
	Data    *domain.AstroSignal `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each compute call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client talks to the signal-compute service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a compute client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute runs one signal computation. A transport failure, a non-2xx
// status, or a success:false body all come back as errors.
func (c *Client) Compute(ctx context.Context, input *ComputeInput) (*domain.AstroSignal, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compute input: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/astro/compute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compute request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read compute response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		if msg == "" || len(msg) >= 500 {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("compute error: %s", msg)
	}

	var result computeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal compute response: %w", err)
	}
	if !result.Success || result.Data == nil {
		errMsg := result.Error
		if errMsg == "" {
			errMsg = "compute reported failure without detail"
		}
		return nil, fmt.Errorf("compute unsuccessful: %s", errMsg)
	}
	return result.Data, nil
}

// Health probes GET /health; true only for an ok status report.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status == "ok"
}
