// Package probe checks whether a running tabterm server is ready. The
// desktop shell and container health checks call it through
// `server -check` before opening the frontend.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
)

var ErrUnhealthy = errors.New("server unhealthy")

// Config controls retries. Zero fields take defaults.
type Config struct {
	Retries int
	MinWait time.Duration
	MaxWait time.Duration
	Timeout time.Duration
}

// DefaultConfig waits up to roughly ten seconds for a starting server.
func DefaultConfig() Config {
	return Config{
		Retries: 8,
		MinWait: 100 * time.Millisecond,
		MaxWait: 2 * time.Second,
		Timeout: 2 * time.Second,
	}
}

// Health is the subset of /health the probe reads.
type Health struct {
	Status string `json:"status"`
	Tabs   int    `json:"tabs"`
}

// Client probes one server.
type Client struct {
	resty *resty.Client
}

// New creates a probe for baseURL, e.g. http://127.0.0.1:8000.
func New(baseURL string, cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Retries <= 0 {
		cfg.Retries = def.Retries
	}
	if cfg.MinWait <= 0 {
		cfg.MinWait = def.MinWait
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	// Pooled transport from retryablehttp; retries are driven by resty.
	transport := retryablehttp.NewClient().HTTPClient.Transport

	c := resty.New().
		SetBaseURL(baseURL).
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.MinWait).
		SetRetryMaxWaitTime(cfg.MaxWait).
		SetJSONUnmarshaler(sonic.ConfigStd.Unmarshal).
		SetHeader("User-Agent", "tabterm-probe/1.0").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{resty: c}
}

// Check waits for /health to report healthy, retrying connection errors
// and 5xx responses.
func (c *Client) Check(ctx context.Context) (Health, error) {
	var h Health
	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(&h).
		Get("/health")
	if err != nil {
		return Health{}, fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Health{}, fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode())
	}
	if h.Status != "healthy" {
		return h, fmt.Errorf("%w: status %q", ErrUnhealthy, h.Status)
	}
	return h, nil
}
