package authflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/service/messaging"
	"github.com/viant/authflow/service/request"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option represents a service option
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger sets the logger; by default the logger is built from the logging config
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = &logger
	}
}

// WithClient replaces the HTTP request client, e.g. with a request.Func stub
func WithClient(client request.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithCredentials sets the session credentials, overriding the configured ones
func WithCredentials(credentials request.Credentials) Option {
	return func(s *Service) {
		s.credentials = credentials
	}
}

// WithRegisterer sets the Prometheus registerer; by default a private registry is used
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(s *Service) {
		s.registerer = registerer
	}
}

// WithQueue sets the store dispatch queue
func WithQueue(queue messaging.Queue[action.Action]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
// The first successful initialisation wins.
func WithTracingExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.exporter = exporter
	}
}
