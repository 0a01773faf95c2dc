// Package fetch performs the single blocking HTTP GET behind every dispatched
// task and classifies its failures.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/burst-fetch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for fetch operations.
var (
	requestsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "burst_requests_total",
		Help: "Total GET requests by HTTP status (or network_error)",
	}, []string{"status"})

	requestDuration = promauto.With(metrics.Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "burst_request_duration_seconds",
		Help:    "GET request duration in seconds, including body read",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	errorsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "burst_errors_total",
		Help: "Total failed GET requests by error class",
	}, []string{"class"})
)

// Response is a completed 2xx GET.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Config holds the client configuration.
type Config struct {
	// UserAgent is sent only when non-empty.
	UserAgent string

	// Timeout bounds the whole request including the body read. 0 disables it.
	Timeout time.Duration

	// MaxBodyBytes rejects larger bodies with a *FetchError. 0 reads everything.
	MaxBodyBytes int64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// Client issues GET requests.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new fetch client.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}
	if cfg.MaxBodyBytes < 0 {
		return nil, fmt.Errorf("max_body_bytes must be >= 0 (got %d)", cfg.MaxBodyBytes)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "fetch").Logger(),
	}, nil
}

// Get performs a GET request against rawURL and returns its body.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// Do executes req. Transport errors, body read errors and non-2xx responses
// are returned as *FetchError.
func (c *Client) Do(req *http.Request) (*Response, error) {
	target := req.URL.String()

	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, c.fail(&FetchError{
			URL:     target,
			Class:   ErrorClassNetwork,
			Message: "request failed",
			Err:     err,
		})
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if !isSuccess(resp.StatusCode) {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, c.fail(&FetchError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Message:    resp.Status,
		})
	}

	var body io.Reader = resp.Body
	if c.config.MaxBodyBytes > 0 {
		// One extra byte tells an oversized body from one exactly at the cap.
		body = io.LimitReader(resp.Body, c.config.MaxBodyBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, c.fail(&FetchError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    "read body",
			Err:        err,
		})
	}
	if c.config.MaxBodyBytes > 0 && int64(len(data)) > c.config.MaxBodyBytes {
		return nil, c.fail(&FetchError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    fmt.Sprintf("body exceeds %d bytes", c.config.MaxBodyBytes),
		})
	}

	c.logger.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("GET complete")

	return &Response{
		URL:        target,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
	}, nil
}

func (c *Client) fail(fe *FetchError) error {
	errorsTotal.WithLabelValues(string(fe.Class)).Inc()
	c.logger.Debug().
		Str("url", fe.URL).
		Int("status", fe.StatusCode).
		Str("error_class", string(fe.Class)).
		Msg("GET failed")
	return fe
}
