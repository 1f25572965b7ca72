// Package proxy forwards named tool invocations to the backend's MCP bridge endpoint.
//
// Every call is a single POST of {"name": ..., "arguments": {...}} to /api/mcp/tools/call.
// The decoded JSON response is returned to the caller unchanged.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperion/hypershell/pkg/metrics"
	"github.com/hyperion/hypershell/pkg/shellerr"
)

const (
	// ToolCallPath is the backend endpoint that executes tool invocations
	ToolCallPath = "/api/mcp/tools/call"

	// UIPath is where the backend serves its web UI
	UIPath = "/ui"

	// RequestIDHeader correlates a tool call with backend logs
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 512
)

// ToolInvocation is the request body of a tool call
type ToolInvocation struct {
	Name      string    `json:"name"`
	Arguments Arguments `json:"arguments"`
}

// Client sends tool calls to the backend
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	metrics metrics.Collector
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(mc metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = mc
	}
}

// NewClient creates a client for the backend at baseURL.
// The default HTTP client has no timeout; deadlines come from the caller's context.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  slog.Default(),
		metrics: metrics.NewNoopCollector(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "proxy")
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ServerURL returns the URL of the backend's web UI
func (c *Client) ServerURL() string {
	return c.baseURL + UIPath
}

// CallTool invokes the named tool. Nil args are sent as an empty object.
// Non-2xx responses yield TOOL_CALL_FAILED; anything that prevents a decoded response yields TRANSPORT_FAILED.
func (c *Client) CallTool(ctx context.Context, name string, args Arguments) (any, error) {
	start := time.Now()

	result, err := c.callTool(ctx, name, args)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = string(shellerr.CodeOf(err))
	}
	c.metrics.ToolCall(name, time.Since(start), outcome)

	return result, err
}

func (c *Client) callTool(ctx context.Context, name string, args Arguments) (any, error) {
	if args == nil {
		args = Arguments{}
	}

	payload, err := json.Marshal(ToolInvocation{Name: name, Arguments: args})
	if err != nil {
		return nil, shellerr.ErrTransportFailed(name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ToolCallPath, bytes.NewReader(payload))
	if err != nil {
		return nil, shellerr.ErrTransportFailed(name, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger := c.logger.With("tool", name, "request_id", requestID)
	logger.Debug("calling tool")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("tool call transport failure", "error", err)
		return nil, shellerr.ErrTransportFailed(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Warn("tool call rejected", "status", resp.StatusCode)

		shErr := shellerr.ErrToolCallFailed(name, resp.StatusCode)
		if text := strings.TrimSpace(string(body)); text != "" {
			shErr = shErr.WithContext("response", text)
		}
		return nil, shErr
	}

	var result any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		logger.Warn("tool call returned undecodable body", "error", err)
		return nil, shellerr.ErrTransportFailed(name, err).WithContext("status", resp.StatusCode)
	}

	return result, nil
}
