package request

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/viant/authflow/metrics"
)

// Option configures HTTPClient
type Option func(c *HTTPClient)

// WithConfig sets client configuration
func WithConfig(config Config) Option {
	return func(c *HTTPClient) {
		c.config = config
	}
}

// WithCredentials sets session credentials used by AuthRequest
func WithCredentials(credentials Credentials) Option {
	return func(c *HTTPClient) {
		c.credentials = credentials
	}
}

// WithHTTPClient sets the underlying http client
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// WithMetrics sets metrics recorder
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}
