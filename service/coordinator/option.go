package coordinator

import (
	"github.com/rs/zerolog"
	"github.com/viant/authflow/metrics"
)

// Option configures the coordinator
type Option func(s *Service)

// WithLogger sets the logger handed to workers
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}
