package store

import (
	"github.com/rs/zerolog"
	"github.com/viant/authflow/metrics"
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/service/messaging"
)

// Option configures the store
type Option func(s *Service)

// WithQueue sets the dispatch queue. Stale terminal actions are nacked with
// ErrStale: a memory queue with MaxRetries redelivers them to the guard that
// many times before dead-lettering them.
func WithQueue(queue messaging.Queue[action.Action]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithGuard sets the stale action guard
func WithGuard(guard Guard) Option {
	return func(s *Service) {
		s.guard = guard
	}
}

// WithLogger sets the logger
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
