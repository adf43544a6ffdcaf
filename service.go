package authflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/viant/authflow/logging"
	"github.com/viant/authflow/metrics"
	"github.com/viant/authflow/model/action"
	"github.com/viant/authflow/model/state"
	"github.com/viant/authflow/service/coordinator"
	"github.com/viant/authflow/service/event"
	"github.com/viant/authflow/service/feature/recovery"
	"github.com/viant/authflow/service/feature/signin"
	"github.com/viant/authflow/service/messaging"
	"github.com/viant/authflow/service/request"
	"github.com/viant/authflow/service/store"
	"github.com/viant/authflow/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrWorkflowFailed is returned by Execute when the workflow ends with a Failed action
var ErrWorkflowFailed = errors.New("workflow failed")

// Service wires the store, the coordinator and the feature workflows
type Service struct {
	config      *Config
	logger      *zerolog.Logger
	client      request.Client
	credentials request.Credentials
	registerer  prometheus.Registerer
	queue       messaging.Queue[action.Action]
	exporter    sdktrace.SpanExporter

	metrics     *metrics.Metrics
	store       *store.Service
	coordinator *coordinator.Service
	outcomes    *event.Hub[*action.Action]
}

// New creates a service; the configuration must name the API URL
func New(options ...Option) (*Service, error) {
	ret := &Service{outcomes: event.NewHub[*action.Action]()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.config == nil {
		ret.config = DefaultConfig()
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	if s.logger == nil {
		logger := logging.New(s.config.Logging)
		s.logger = &logger
	}
	if err := s.initTracing(); err != nil {
		return err
	}
	s.metrics = metrics.New(s.config.Metrics.Namespace, s.registerer)

	storeOptions := []store.Option{store.WithLogger(*s.logger), store.WithMetrics(s.metrics)}
	if s.queue != nil {
		storeOptions = append(storeOptions, store.WithQueue(s.queue))
	}
	s.store = store.New(storeOptions...)
	var err error
	if s.coordinator, err = coordinator.New(s.store, coordinator.WithLogger(*s.logger), coordinator.WithMetrics(s.metrics)); err != nil {
		return err
	}
	s.store.SetGuard(s.coordinator.IsCurrent)
	s.store.Observe(s.coordinator.Observe)
	s.store.Observe(s.notify)

	if s.client == nil {
		if s.client, err = s.newClient(); err != nil {
			return err
		}
	}
	recoveryService, err := recovery.New(s.client, s.config.APIURL)
	if err != nil {
		return err
	}
	if err = recoveryService.Register(s); err != nil {
		return err
	}
	signinService, err := signin.New(s.client, s.config.APIURL)
	if err != nil {
		return err
	}
	return signinService.Register(s)
}

func (s *Service) initTracing() error {
	if s.exporter != nil {
		return tracing.InitWithExporter(s.config.Tracing.ServiceName, s.config.Tracing.ServiceVersion, s.exporter)
	}
	if !s.config.Tracing.Enabled {
		return nil
	}
	return tracing.Init(s.config.Tracing.ServiceName, s.config.Tracing.ServiceVersion, s.config.Tracing.OutputFile)
}

func (s *Service) newClient() (request.Client, error) {
	credentials := s.credentials
	if credentials == nil {
		credentials = s.config.Credentials.credentials()
	}
	options := []request.Option{
		request.WithConfig(s.config.Request),
		request.WithLogger(*s.logger),
		request.WithMetrics(s.metrics),
	}
	if credentials != nil {
		options = append(options, request.WithCredentials(credentials))
	}
	return request.New(options...)
}

// notify forwards reduced Requested and terminal actions to Execute callers.
// It runs after the coordinator observer, so a Requested event carries the
// generation of the worker it started.
func (s *Service) notify(act *action.Action) {
	generation := act.Generation
	switch {
	case act.Kind.Lifecycle == action.Requested:
		generation = s.coordinator.Generation(act.Kind.Feature)
	case !act.Kind.Lifecycle.IsTerminal():
		return
	}
	s.outcomes.Publish(event.NewEvent(&event.Context{Kind: act.Kind.String(), Generation: generation}, act))
}

// Register adds a store slice
func (s *Service) Register(slice string, initial state.Workflow, reducer store.Reducer) error {
	return s.store.Register(slice, initial, reducer)
}

// TakeLatest adds a latest-wins watcher
func (s *Service) TakeLatest(feature action.Feature, worker coordinator.Worker) error {
	return s.coordinator.TakeLatest(feature, worker)
}

// Start starts the dispatch loop
func (s *Service) Start(ctx context.Context) error {
	return s.store.Start(ctx)
}

// Shutdown cancels running workers and stops the dispatch loop
func (s *Service) Shutdown() {
	s.coordinator.Shutdown()
	s.store.Shutdown()
}

// Dispatch enqueues an action
func (s *Service) Dispatch(ctx context.Context, act *action.Action) error {
	return s.store.Dispatch(ctx, act)
}

// Execute dispatches a Requested action and waits for the terminal action of
// the worker it started, or of a later worker of the same feature that
// superseded it; a Failed outcome is returned as ErrWorkflowFailed.
func (s *Service) Execute(ctx context.Context, act *action.Action) (*action.Action, error) {
	if act == nil || act.Kind.Lifecycle != action.Requested {
		return nil, fmt.Errorf("expected requested action, got %v", act)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan *action.Action, 1)
	var generation uint64 // written and read on the dispatch goroutine only
	unsubscribe := s.outcomes.Subscribe(func(e *event.Event[*action.Action]) {
		outcome := e.Data
		if outcome.Kind.Feature != act.Kind.Feature {
			return
		}
		if outcome.Kind.Lifecycle == action.Requested {
			if outcome.ID == act.ID {
				generation = e.Context.Generation
			}
			return
		}
		if generation == 0 || outcome.Generation < generation {
			return
		}
		select {
		case done <- outcome:
		default:
		}
	})
	defer unsubscribe()
	if err := s.Dispatch(ctx, act); err != nil {
		return nil, err
	}
	select {
	case terminal := <-done:
		if terminal.Kind.Lifecycle == action.Failed {
			return terminal, fmt.Errorf("%w: %s", ErrWorkflowFailed, terminal.ErrorText())
		}
		return terminal, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the current state snapshot
func (s *Service) State() state.Root {
	return s.store.State()
}

// Subscribe registers a state change listener and returns a function removing it
func (s *Service) Subscribe(listener event.Listener[store.Change]) func() {
	return s.store.Subscribe(listener)
}

// WaitFor blocks until predicate holds for the named slice
func (s *Service) WaitFor(ctx context.Context, slice string, predicate func(state.Workflow) bool) (state.Workflow, error) {
	return s.store.WaitFor(ctx, slice, predicate)
}

// Dropped returns the number of stale worker results discarded
func (s *Service) Dropped() int64 {
	return s.store.Dropped()
}

// Metrics returns the service instruments
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// BuildRecoveryModel records the reactivation link query and the new password
func (s *Service) BuildRecoveryModel(ctx context.Context, query interface{}, password string) error {
	return s.Dispatch(ctx, recovery.BuildModel(query, password))
}

// RecoverPassword submits the recovery SMS code and waits for the outcome
func (s *Service) RecoverPassword(ctx context.Context, code string) error {
	_, err := s.Execute(ctx, recovery.RequestPasswordRecovery(code))
	return err
}

// ResendSMS asks for a new recovery SMS and waits for the outcome
func (s *Service) ResendSMS(ctx context.Context) error {
	_, err := s.Execute(ctx, recovery.RequestResendSMS())
	return err
}

// PasswordRequired checks whether the account of email needs a password.
// Malformed emails are rejected without calling the API.
func (s *Service) PasswordRequired(ctx context.Context, email string) (bool, error) {
	if err := signin.ValidateEmail(email); err != nil {
		return false, fmt.Errorf("invalid email %q: %w", email, err)
	}
	if _, err := s.Execute(ctx, signin.RequestPasswordRequiredCheck(email)); err != nil {
		return false, err
	}
	return signin.PasswordRequired(s.State()), nil
}

// SignIn submits credentials and returns the redirect URL
func (s *Service) SignIn(ctx context.Context, query interface{}, userName, password string) (string, error) {
	if _, err := s.Execute(ctx, signin.RequestSignIn(query, userName, password)); err != nil {
		return "", err
	}
	return signin.RedirectURL(s.State()), nil
}
