package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/authflow/internal/clock"
	"github.com/viant/authflow/metrics"
	"github.com/viant/authflow/tracing"
	"golang.org/x/time/rate"
)

// Config represents HTTP client configuration
type Config struct {
	// Timeout bounds a single call; zero disables the client side timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout" env:"TIMEOUT"`
	// RateLimit is the maximum requests per second; zero disables limiting.
	RateLimit float64 `yaml:"rateLimit" json:"rateLimit" env:"RATE_LIMIT" validate:"gte=0"`
	// Burst is the limiter burst size.
	Burst int `yaml:"burst" json:"burst" env:"BURST" validate:"gte=0"`
	// UserAgent is sent with every call.
	UserAgent string `yaml:"userAgent" json:"userAgent" env:"USER_AGENT"`
	// MaxResponseBytes caps the response body read.
	MaxResponseBytes int64 `yaml:"maxResponseBytes" json:"maxResponseBytes" env:"MAX_RESPONSE_BYTES" validate:"gte=0"`
}

// DefaultConfig returns the default client configuration
func DefaultConfig() Config {
	return Config{
		Timeout:          30 * time.Second,
		Burst:            1,
		UserAgent:        "authflow/1.0",
		MaxResponseBytes: 1 << 20,
	}
}

// HTTPClient implements Client over net/http with JSON bodies.
// It is safe for concurrent use.
type HTTPClient struct {
	config      Config
	client      *http.Client
	limiter     *rate.Limiter
	credentials Credentials
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// New creates an HTTP client; the default client keeps session cookies in a jar
func New(options ...Option) (*HTTPClient, error) {
	ret := &HTTPClient{config: DefaultConfig(), logger: zerolog.Nop()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.client == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		ret.client = &http.Client{Timeout: ret.config.Timeout, Jar: jar}
	}
	if ret.config.RateLimit > 0 {
		burst := ret.config.Burst
		if burst <= 0 {
			burst = 1
		}
		ret.limiter = rate.NewLimiter(rate.Limit(ret.config.RateLimit), burst)
	}
	if ret.config.MaxResponseBytes <= 0 {
		ret.config.MaxResponseBytes = DefaultConfig().MaxResponseBytes
	}
	return ret, nil
}

// Request performs a plain call
func (c *HTTPClient) Request(ctx context.Context, options *Options, result interface{}) error {
	if options == nil || options.URL == "" {
		return ErrURLRequired
	}
	return c.do(ctx, options, false, result)
}

// AuthRequest posts body to URL with session credentials
func (c *HTTPClient) AuthRequest(ctx context.Context, body interface{}, URL string, result interface{}) error {
	if URL == "" {
		return ErrURLRequired
	}
	return c.do(ctx, &Options{URL: URL, Method: http.MethodPost, Body: body}, true, result)
}

func (c *HTTPClient) do(ctx context.Context, options *Options, authenticated bool, result interface{}) (err error) {
	method := options.method()
	ctx, span := tracing.StartSpan(ctx, "request "+method, tracing.KindClient)
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"http.method": method, "http.url": options.URL})

	if c.limiter != nil {
		if err = c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}
	req, err := c.newRequest(ctx, method, options, authenticated)
	if err != nil {
		return err
	}

	started := clock.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.Request(method, "error", clock.Since(started).Seconds())
		c.logger.Debug().Err(err).Str("method", method).Str("url", options.URL).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, options.URL, err)
	}
	defer resp.Body.Close()
	c.metrics.Request(method, strconv.Itoa(resp.StatusCode), clock.Since(started).Seconds())
	span.SetStatusFromHTTPCode(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", options.URL, err)
	}
	c.logger.Debug().Str("method", method).Str("url", options.URL).Int("status", resp.StatusCode).Msg("request completed")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(data)}
	}
	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%w from %s: %v", ErrDecode, options.URL, err)
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method string, options *Options, authenticated bool) (*http.Request, error) {
	var body io.Reader
	if options.Body != nil {
		data, err := json.Marshal(options.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, options.URL, body)
	if err != nil {
		return nil, fmt.Errorf("invalid request %s %s: %w", method, options.URL, err)
	}
	for k, values := range options.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if authenticated && c.credentials != nil {
		token, err := c.credentials.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
