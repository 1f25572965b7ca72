// Package health checks whether the backend server answers on its health endpoint.
package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hyperion/hypershell/pkg/metrics"
	"github.com/hyperion/hypershell/pkg/shellerr"
)

// Healthy is the value returned by a successful check
const Healthy = "healthy"

// Path is the backend's health endpoint
const Path = "/health"

// Result labels recorded by the metrics collector
const (
	ResultHealthy       = "healthy"
	ResultUnhealthy     = "unhealthy"
	ResultRequestFailed = "request_failed"
)

// Checker performs a single health check
type Checker interface {
	Check(ctx context.Context) (string, error)
}

// Probe issues GET <base>/health against the backend
type Probe struct {
	url     string
	client  *http.Client
	logger  *slog.Logger
	metrics metrics.Collector
}

// ProbeOption configures a Probe
type ProbeOption func(*Probe)

// WithHTTPClient sets the HTTP client used for checks
func WithHTTPClient(client *http.Client) ProbeOption {
	return func(p *Probe) {
		p.client = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ProbeOption {
	return func(p *Probe) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(mc metrics.Collector) ProbeOption {
	return func(p *Probe) {
		p.metrics = mc
	}
}

// NewProbe creates a probe for the backend at baseURL (for example http://localhost:7095).
// The default client has no timeout; callers bound a check through ctx.
func NewProbe(baseURL string, opts ...ProbeOption) *Probe {
	p := &Probe{
		url:     strings.TrimRight(baseURL, "/") + Path,
		client:  &http.Client{},
		logger:  slog.Default(),
		metrics: metrics.NewNoopCollector(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "health")
	return p
}

// URL returns the health endpoint URL
func (p *Probe) URL() string {
	return p.url
}

// Check performs one GET against the health endpoint.
// Any 2xx status is healthy; other statuses yield UNHEALTHY and transport failures REQUEST_FAILED.
func (p *Probe) Check(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.metrics.HealthCheck(ResultRequestFailed)
		return "", shellerr.ErrRequestFailed(p.url, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("health request failed", "url", p.url, "error", err)
		p.metrics.HealthCheck(ResultRequestFailed)
		return "", shellerr.ErrRequestFailed(p.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Debug("backend unhealthy", "url", p.url, "status", resp.StatusCode)
		p.metrics.HealthCheck(ResultUnhealthy)
		return "", shellerr.ErrUnhealthy(p.url, resp.StatusCode)
	}

	p.metrics.HealthCheck(ResultHealthy)
	return Healthy, nil
}
